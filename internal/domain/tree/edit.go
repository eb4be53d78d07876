package tree

import (
	"slices"
	"time"
)

// Field edits apply to the node under the cursor and leave the cursor alone.
// Each returns false (and clones nothing) when the edit would not change the
// node.

func (s *State) SetComment(text string) bool {
	if s.Current().Comment == text {
		return false
	}
	s.editAt(s.Position, func(n *Node) { n.Comment = text })
	return true
}

// ToggleAnnotation adds or removes a. Move-quality glyphs replace each other.
func (s *State) ToggleAnnotation(a Annotation) bool {
	if !a.Valid() {
		return false
	}
	cur := s.Current()
	var next []Annotation
	if cur.HasAnnotation(a) {
		next = slices.DeleteFunc(slices.Clone(cur.Annotations), func(x Annotation) bool { return x == a })
	} else {
		for _, x := range cur.Annotations {
			if a.IsMoveQuality() && x.IsMoveQuality() {
				continue
			}
			next = append(next, x)
		}
		next = SortAnnotations(append(next, a))
	}
	s.editAt(s.Position, func(n *Node) { n.Annotations = next })
	return true
}

func (s *State) SetScore(score *Score) bool {
	return s.SetScoreAt(s.Position, score)
}

// SetScoreAt stores an evaluation on the node at path, which must resolve
// exactly. The cursor does not move.
func (s *State) SetScoreAt(path Path, score *Score) bool {
	n := NodeAt(s.Root, path)
	if n == nil || n.Score.Equal(score) {
		return false
	}
	s.editAt(path, func(n *Node) { n.Score = score })
	return true
}

func (s *State) SetShapes(shapes []Shape) bool {
	if slices.Equal(s.Current().Shapes, shapes) {
		return false
	}
	next := slices.Clone(shapes)
	s.editAt(s.Position, func(n *Node) { n.Shapes = next })
	return true
}

// ToggleShape removes shape when present, otherwise adds it.
func (s *State) ToggleShape(shape Shape) bool {
	cur := s.Current().Shapes
	var next []Shape
	if slices.Contains(cur, shape) {
		next = slices.DeleteFunc(slices.Clone(cur), func(x Shape) bool { return x == shape })
	} else {
		next = append(slices.Clone(cur), shape)
	}
	s.editAt(s.Position, func(n *Node) { n.Shapes = next })
	return true
}

func (s *State) ClearShapes() bool {
	if len(s.Current().Shapes) == 0 {
		return false
	}
	s.editAt(s.Position, func(n *Node) { n.Shapes = nil })
	return true
}

func (s *State) SetClock(clock *time.Duration) bool {
	cur := s.Current().Clock
	if (cur == nil && clock == nil) || (cur != nil && clock != nil && *cur == *clock) {
		return false
	}
	s.editAt(s.Position, func(n *Node) { n.Clock = clock })
	return true
}

func (s *State) editAt(path Path, fn func(n *Node)) {
	root, target, _ := ClonePath(s.Root, path)
	fn(target)
	s.Root = root
	s.Dirty = true
}

// DeleteMove removes the subtree at path. A cursor inside the removed
// subtree moves to its parent. A cursor that runs through the same parent at
// or below the removed depth gets its index at that depth reset to 0; later
// indices are left as they were and may no longer resolve.
func (s *State) DeleteMove(path Path) bool {
	if len(path) == 0 || NodeAt(s.Root, path) == nil {
		return false
	}
	parent := path.Parent()
	root, target, _ := ClonePath(s.Root, parent)
	idx := path[len(path)-1]
	target.Children = slices.Delete(target.Children, idx, idx+1)
	s.Root = root
	s.Dirty = true

	depth := len(path) - 1
	switch {
	case s.Position.HasPrefix(path):
		s.Position = parent
	case len(s.Position) > depth && s.Position[:depth].Equal(parent):
		pos := s.Position.Clone()
		pos[depth] = 0
		s.Position = pos
	}
	return true
}

// PromoteVariation moves the deepest non-mainline step of path to the front
// of its siblings, keeping the others in order, and puts the cursor on the
// promoted path.
func (s *State) PromoteVariation(path Path) bool {
	i := len(path) - 1
	for i >= 0 && path[i] == 0 {
		i--
	}
	if i < 0 {
		return false
	}
	parentPath := path[:i]
	if NodeAt(s.Root, parentPath.Child(path[i])) == nil {
		return false
	}
	root, parent, _ := ClonePath(s.Root, parentPath)
	idx := path[i]
	child := parent.Children[idx]
	copy(parent.Children[1:idx+1], parent.Children[:idx])
	parent.Children[0] = child

	pos := path.Clone()
	pos[i] = 0
	s.Install(root, pos)
	return true
}

// PromoteToMainline promotes repeatedly until the whole path is mainline.
// A path that does not fully resolve is first cut to its deepest node.
func (s *State) PromoteToMainline(path Path) bool {
	_, depth := Resolve(s.Root, path)
	p := path[:depth].Clone()
	changed := false
	for !p.IsMainline() {
		if !s.PromoteVariation(p) {
			break
		}
		changed = true
		p = s.Position
	}
	return changed
}

// SetStart replaces the whole tree with a fresh root at fen. Only used when
// the starting position itself changes.
func (s *State) SetStart(fen string, defaultFEN string) {
	s.Install(NewRoot(fen), Path{})
	if fen == defaultFEN {
		s.Headers.FEN = ""
	} else {
		s.Headers.FEN = fen
	}
	s.Headers.Start = nil
}

func (s *State) SetHeaders(h Headers) {
	s.Headers = h.clone()
	s.Dirty = true
}

func (s *State) SetReport(r Report) {
	s.Report = r
}

// Cursor navigation. None of these clone.

// GoTo moves the cursor to path, degrading to the deepest resolvable node.
func (s *State) GoTo(path Path) {
	_, depth := Resolve(s.Root, path)
	s.Position = path[:depth].Clone()
}

func (s *State) Next() bool {
	cur := s.Current()
	if len(cur.Children) == 0 {
		return false
	}
	s.Position = s.resolvedPosition().Child(0)
	return true
}

func (s *State) Previous() bool {
	if len(s.Position) == 0 {
		return false
	}
	s.Position = s.resolvedPosition().Parent()
	return true
}

func (s *State) ToStart() {
	s.Position = Path{}
}

// ToEnd follows the mainline from the cursor to its last move.
func (s *State) ToEnd() {
	p := s.resolvedPosition()
	for n := NodeAt(s.Root, p); len(n.Children) > 0; n = n.Children[0] {
		p = append(p, 0)
	}
	s.Position = p
}

func (s *State) resolvedPosition() Path {
	_, depth := Resolve(s.Root, s.Position)
	return s.Position[:depth].Clone()
}
