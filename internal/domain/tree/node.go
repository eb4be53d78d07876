package tree

import (
	"time"

	"opening_tree/internal/domain/chess"
)

// Node одна позиция дерева партии и метаданные хода, который к ней привёл.
// Children[0] is the mainline continuation, the rest are variations in
// priority order.
type Node struct {
	FEN         string         `json:"fen" bson:"fen"`
	Move        *chess.Move    `json:"move,omitempty" bson:"move,omitempty"`
	SAN         string         `json:"san,omitempty" bson:"san,omitempty"`
	Children    []*Node        `json:"children" bson:"children"`
	Score       *Score         `json:"score,omitempty" bson:"score,omitempty"`
	HalfMoves   int            `json:"halfMoves" bson:"half_moves"`
	Shapes      []Shape        `json:"shapes,omitempty" bson:"shapes,omitempty"`
	Annotations []Annotation   `json:"annotations,omitempty" bson:"annotations,omitempty"`
	Comment     string         `json:"comment,omitempty" bson:"comment,omitempty"`
	Clock       *time.Duration `json:"clock,omitempty" bson:"clock,omitempty"`
}

// Score is an engine evaluation from white's point of view.
type Score struct {
	// CP is set for centipawn scores, Mate for forced mates (negative when
	// black mates).
	CP    *int `json:"cp,omitempty" bson:"cp,omitempty"`
	Mate  *int `json:"mate,omitempty" bson:"mate,omitempty"`
	Depth int  `json:"depth,omitempty" bson:"depth,omitempty"`
}

func CPScore(cp int) *Score {
	return &Score{CP: &cp}
}

func MateScore(n int) *Score {
	return &Score{Mate: &n}
}

func (s *Score) Equal(o *Score) bool {
	if s == nil || o == nil {
		return s == o
	}
	return intPtrEqual(s.CP, o.CP) && intPtrEqual(s.Mate, o.Mate) && s.Depth == o.Depth
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type Brush string

const (
	BrushGreen  Brush = "green"
	BrushRed    Brush = "red"
	BrushYellow Brush = "yellow"
	BrushBlue   Brush = "blue"
)

// Shape is a square highlight (Dest empty) or an arrow.
type Shape struct {
	Orig  string `json:"orig" bson:"orig"`
	Dest  string `json:"dest,omitempty" bson:"dest,omitempty"`
	Brush Brush  `json:"brush" bson:"brush"`
}

func (s Shape) IsArrow() bool {
	return s.Dest != "" && s.Dest != s.Orig
}

// NewRoot creates a childless root node at fen.
func NewRoot(fen string) *Node {
	return &Node{FEN: fen, Children: []*Node{}}
}

// IsRoot reports whether n was not produced by a move.
func (n *Node) IsRoot() bool {
	return n.Move == nil
}

// Mainline returns the index 0 child or nil.
func (n *Node) Mainline() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// ChildBySAN returns the index of the child reached by san, or -1.
func (n *Node) ChildBySAN(san string) int {
	for i, c := range n.Children {
		if c.SAN == san {
			return i
		}
	}
	return -1
}

// HasAnnotation reports whether a is set on n.
func (n *Node) HasAnnotation(a Annotation) bool {
	for _, x := range n.Annotations {
		if x == a {
			return true
		}
	}
	return false
}

// shallowCopy copies n and every slice it owns, keeping child pointers.
func (n *Node) shallowCopy() *Node {
	c := *n
	c.Children = append(make([]*Node, 0, len(n.Children)+1), n.Children...)
	if n.Shapes != nil {
		c.Shapes = append([]Shape(nil), n.Shapes...)
	}
	if n.Annotations != nil {
		c.Annotations = append([]Annotation(nil), n.Annotations...)
	}
	return &c
}
