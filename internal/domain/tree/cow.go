package tree

import (
	errs "opening_tree/internal/errors"
)

// ClonePath copies the nodes from root down to the node at path (or the
// deepest resolvable node) and gives each copy its own children slice. Nodes
// off that chain keep their identity, so the cost is O(depth). It returns
// the new root, the copied target and the number of path indices consumed.
//
// The copies are private until installed; callers edit the target and then
// publish the root with Install.
func ClonePath(root *Node, path Path) (*Node, *Node, int) {
	newRoot := root.shallowCopy()
	cur := newRoot
	depth := 0
	for _, idx := range path {
		if idx < 0 || idx >= len(cur.Children) {
			break
		}
		child := cur.Children[idx].shallowCopy()
		cur.Children[idx] = child
		cur = child
		depth++
	}
	return newRoot, cur, depth
}

// Install publishes root as the new tree and moves the cursor.
func (s *State) Install(root *Node, position Path) {
	s.Root = root
	s.Position = position.Clone()
	s.Dirty = true
}

// AttachChild clones the path to parent and inserts child there: at index 0
// when front is set, otherwise as the last variation. The returned path
// addresses the inserted child. A child that is already an ancestor of the
// insertion point, or reachable anywhere else in the tree, is rejected.
func (s *State) AttachChild(parent Path, child *Node, front bool) (Path, error) {
	line := Line(s.Root, parent)
	if len(line) != len(parent)+1 {
		return nil, errs.ErrInvalidPath
	}
	for _, n := range line {
		if n == child {
			return nil, errs.ErrCycle
		}
	}
	if contains(s.Root, child) {
		return nil, errs.ErrAlreadyAttached
	}
	root, target, _ := ClonePath(s.Root, parent)
	idx := len(target.Children)
	if front {
		target.Children = append([]*Node{child}, target.Children...)
		idx = 0
	} else {
		target.Children = append(target.Children, child)
	}
	pos := parent.Child(idx)
	s.Install(root, pos)
	return pos, nil
}

func contains(root, target *Node) bool {
	found := false
	Walk(root, func(n *Node, _ func() Path) bool {
		found = n == target
		return !found
	})
	return found
}
