package moves

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"opening_tree/internal/domain/chess"
	"opening_tree/internal/domain/tree"
	errs "opening_tree/internal/errors"
	"opening_tree/internal/rules"
)

// Cue is the side effect a client plays after a move (sound, animation).
type Cue string

const (
	CueMove    Cue = "move"
	CueCapture Cue = "capture"
	CueCheck   Cue = "check"
)

// CueFor derives the cue from notation alone.
func CueFor(san string) Cue {
	switch {
	case strings.ContainsAny(san, "+#"):
		return CueCheck
	case strings.Contains(san, "x"):
		return CueCapture
	}
	return CueMove
}

type Options struct {
	// Mainline inserts a new move in front of the existing children instead
	// of appending it as the last variation.
	Mainline bool
	// UpdateHeaders sets the result on mate, stalemate, insufficient
	// material, threefold repetition and the fifty-move rule.
	UpdateHeaders bool
}

type Applier struct {
	engine rules.Engine
	log    *zap.SugaredLogger
}

func NewApplier(engine rules.Engine, log *zap.SugaredLogger) *Applier {
	return &Applier{engine: engine, log: log}
}

func (a *Applier) Engine() rules.Engine {
	return a.engine
}

// Step plays notation (algebraic, falling back to coordinate) on pos and
// returns the resulting child of parent. pos is advanced only on success.
func Step(pos rules.Position, parent *tree.Node, notation string) (*tree.Node, error) {
	mv, err := rules.Decode(pos, notation)
	if err != nil {
		return nil, err
	}
	return StepMove(pos, parent, mv)
}

// StepMove is Step for an already decoded move.
func StepMove(pos rules.Position, parent *tree.Node, mv chess.Move) (*tree.Node, error) {
	if !pos.Legal(mv) {
		return nil, fmt.Errorf("%w: %s", errs.ErrIllegalMove, mv.UCI())
	}
	san, err := pos.SAN(mv)
	if err != nil {
		return nil, err
	}
	if err = pos.Play(mv); err != nil {
		return nil, err
	}
	return &tree.Node{
		FEN:       pos.FEN(),
		Move:      &mv,
		SAN:       san,
		Children:  []*tree.Node{},
		HalfMoves: parent.HalfMoves + 1,
	}, nil
}

// MakeMove applies notation at the cursor. An existing child with the same
// notation is followed without cloning anything; otherwise the path to the
// cursor is cloned and a new child inserted. Illegal input leaves s as it was.
func (a *Applier) MakeMove(s *tree.State, notation string, opts Options) (Cue, error) {
	path, cur := a.cursor(s)
	if idx := cur.ChildBySAN(notation); idx >= 0 {
		s.Position = path.Child(idx)
		return CueFor(notation), nil
	}
	pos, err := a.engine.Position(cur.FEN)
	if err != nil {
		return "", err
	}
	mv, err := rules.Decode(pos, notation)
	if err != nil {
		a.log.Debugf("rejected move %q at %s: %v", notation, path, err)
		return "", err
	}
	return a.apply(s, path, cur, pos, mv, opts)
}

// Play is MakeMove for a typed move.
func (a *Applier) Play(s *tree.State, mv chess.Move, opts Options) (Cue, error) {
	path, cur := a.cursor(s)
	pos, err := a.engine.Position(cur.FEN)
	if err != nil {
		return "", err
	}
	return a.apply(s, path, cur, pos, mv, opts)
}

func (a *Applier) apply(s *tree.State, path tree.Path, cur *tree.Node, pos rules.Position, mv chess.Move, opts Options) (Cue, error) {
	if mv.IsNull() || !pos.Legal(mv) {
		a.log.Debugf("rejected move %s at %s", mv.UCI(), path)
		return "", fmt.Errorf("%w: %s", errs.ErrIllegalMove, mv.UCI())
	}
	san, err := pos.SAN(mv)
	if err != nil {
		return "", err
	}
	if idx := cur.ChildBySAN(san); idx >= 0 {
		s.Position = path.Child(idx)
		return CueFor(san), nil
	}

	node, err := StepMove(pos, cur, mv)
	if err != nil {
		return "", err
	}
	childPath, err := s.AttachChild(path, node, opts.Mainline)
	if err != nil {
		return "", err
	}
	if opts.UpdateHeaders {
		a.updateResult(s, pos, childPath)
	}
	return CueFor(san), nil
}

func (a *Applier) updateResult(s *tree.State, pos rules.Position, path tree.Path) {
	switch pos.Outcome() {
	case chess.Checkmate:
		if pos.Turn() == chess.Black {
			s.Headers.Result = chess.ResultWhiteWins
		} else {
			s.Headers.Result = chess.ResultBlackWins
		}
		return
	case chess.Stalemate, chess.InsufficientMaterial:
		s.Headers.Result = chess.ResultDraw
		return
	}
	line := tree.Line(s.Root, path)
	if isThreefold(line) || isFiftyMoveDraw(line) {
		s.Headers.Result = chess.ResultDraw
	}
}

// MakeMoves applies a sequence from the cursor. Moves already present are
// followed; at the first divergence the path is cloned once and the rest is
// appended as a new chain. It stops quietly at the first move that does not
// parse and reports how many moves were applied or followed.
func (a *Applier) MakeMoves(s *tree.State, notations []string, opts Options) (int, error) {
	path, node := a.cursor(s)
	pos, err := a.engine.Position(node.FEN)
	if err != nil {
		return 0, err
	}

	i := 0
	for ; i < len(notations); i++ {
		idx := node.ChildBySAN(notations[i])
		if idx < 0 {
			mv, err := rules.Decode(pos, notations[i])
			if err != nil {
				a.settle(s, pos, path, i, opts)
				return i, nil
			}
			san, err := pos.SAN(mv)
			if err != nil {
				a.settle(s, pos, path, i, opts)
				return i, nil
			}
			idx = node.ChildBySAN(san)
		}
		if idx < 0 {
			break
		}
		child := node.Children[idx]
		if child.Move == nil || pos.Play(*child.Move) != nil {
			break
		}
		path = path.Child(idx)
		node = child
	}
	if i == len(notations) {
		a.settle(s, pos, path, i, opts)
		return i, nil
	}

	var first, last *tree.Node
	chain := 0
	parent := node
	for ; i < len(notations); i++ {
		n, err := Step(pos, parent, notations[i])
		if err != nil {
			a.log.Debugf("batch stopped at %q: %v", notations[i], err)
			break
		}
		if first == nil {
			first = n
		} else {
			last.Children = append(last.Children, n)
		}
		last = n
		parent = n
		chain++
	}
	if first == nil {
		a.settle(s, pos, path, i, opts)
		return i, nil
	}
	childPath, err := s.AttachChild(path, first, opts.Mainline)
	if err != nil {
		return 0, err
	}
	for j := 1; j < chain; j++ {
		childPath = append(childPath, 0)
	}
	a.settle(s, pos, childPath, i, opts)
	return i, nil
}

// settle moves the cursor to the end of a batch; pos is the live position
// there.
func (a *Applier) settle(s *tree.State, pos rules.Position, path tree.Path, applied int, opts Options) {
	s.Position = path
	if opts.UpdateHeaders && applied > 0 {
		a.updateResult(s, pos, path)
	}
}

// cursor resolves s.Position, trimming indices that no longer resolve.
func (a *Applier) cursor(s *tree.State) (tree.Path, *tree.Node) {
	n, depth := tree.Resolve(s.Root, s.Position)
	return s.Position[:depth].Clone(), n
}
