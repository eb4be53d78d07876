package tree

import (
	"opening_tree/internal/domain/chess"
)

type EventKind int

const (
	// EventNode visits a node (the root first).
	EventNode EventKind = iota
	// EventOpen starts a non-mainline child; the child's EventNode follows.
	EventOpen
	// EventClose ends the variation opened by the matching EventOpen.
	EventClose
)

// Event is one step of a document-order traversal.
type Event struct {
	Kind EventKind
	Node *Node
	link *pathLink
}

// Path materialises the address of e.Node. It is O(depth), so traversals
// that do not need addresses never pay for them.
func (e Event) Path() Path {
	if e.link == nil {
		return Path{}
	}
	p := make(Path, e.link.depth)
	for l := e.link; l != nil; l = l.parent {
		p[l.depth-1] = l.idx
	}
	return p
}

// pathLink is a persistent linked path: siblings share their parent's link.
type pathLink struct {
	parent *pathLink
	idx    int
	depth  int
}

func (l *pathLink) child(idx int) *pathLink {
	d := 1
	if l != nil {
		d = l.depth + 1
	}
	return &pathLink{parent: l, idx: idx, depth: d}
}

type walkOp int

const (
	opEmit walkOp = iota
	opChildren
	opOpen
	opClose
)

type walkItem struct {
	op   walkOp
	node *Node
	link *pathLink
}

// WalkEvents traverses the tree in PGN document order: a node, then its
// mainline move, then every other child expanded depth-first as a variation,
// then the mainline move's continuation. It uses an explicit stack so
// arbitrarily deep trees are safe. Returning false from fn stops the walk.
func WalkEvents(root *Node, fn func(Event) bool) {
	if root == nil {
		return
	}
	stack := []walkItem{{op: opChildren, node: root}, {op: opEmit, node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch it.op {
		case opEmit:
			if !fn(Event{Kind: EventNode, Node: it.node, link: it.link}) {
				return
			}
		case opOpen:
			if !fn(Event{Kind: EventOpen, Node: it.node, link: it.link}) {
				return
			}
		case opClose:
			if !fn(Event{Kind: EventClose, Node: it.node, link: it.link}) {
				return
			}
		case opChildren:
			children := it.node.Children
			if len(children) == 0 {
				continue
			}
			main := it.link.child(0)
			stack = append(stack, walkItem{op: opChildren, node: children[0], link: main})
			for i := len(children) - 1; i >= 1; i-- {
				l := it.link.child(i)
				stack = append(stack,
					walkItem{op: opClose, node: children[i], link: l},
					walkItem{op: opChildren, node: children[i], link: l},
					walkItem{op: opEmit, node: children[i], link: l},
					walkItem{op: opOpen, node: children[i], link: l},
				)
			}
			stack = append(stack, walkItem{op: opEmit, node: children[0], link: main})
		}
	}
}

// Walk visits every node in document order.
func Walk(root *Node, fn func(n *Node, path func() Path) bool) {
	WalkEvents(root, func(e Event) bool {
		if e.Kind != EventNode {
			return true
		}
		return fn(e.Node, e.Path)
	})
}

// Count returns the number of nodes including the root.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node, func() Path) bool {
		n++
		return true
	})
	return n
}

// MaxDepth returns the length of the longest path from root.
func MaxDepth(root *Node) int {
	deepest := 0
	WalkEvents(root, func(e Event) bool {
		if e.Kind == EventNode && e.link != nil && e.link.depth > deepest {
			deepest = e.link.depth
		}
		return true
	})
	return deepest
}

// MainlinePath returns the all-zero path from root to the end of the mainline.
func MainlinePath(root *Node) Path {
	p := Path{}
	for n := root; len(n.Children) > 0; n = n.Children[0] {
		p = append(p, 0)
	}
	return p
}

// Index maps a FEN to the first path (in document order) where it occurs.
type Index map[string]Path

// BuildIndex indexes every position in one pass for transposition lookups.
func BuildIndex(root *Node) Index {
	idx := make(Index)
	Walk(root, func(n *Node, path func() Path) bool {
		if _, ok := idx[n.FEN]; !ok {
			idx[n.FEN] = path()
		}
		return true
	})
	return idx
}

// Lookup returns the first path for fen.
func (i Index) Lookup(fen string) (Path, bool) {
	p, ok := i[fen]
	return p, ok
}

// FindStripped returns the paths of every node whose position equals fen
// ignoring the move counters. Linear scan.
func FindStripped(root *Node, fen string) []Path {
	want := chess.StripFEN(fen)
	var paths []Path
	Walk(root, func(n *Node, path func() Path) bool {
		if chess.StripFEN(n.FEN) == want {
			paths = append(paths, path())
		}
		return true
	})
	return paths
}
