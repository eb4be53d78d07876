package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node by child indices from the root; the empty path is
// the root itself. Paths are not stable: re-resolve after every edit.
type Path []int

// ParsePath parses the dotted form produced by Path.String ("0.2.0").
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("bad path element %q", part)
		}
		p = append(p, i)
	}
	return p, nil
}

func (p Path) String() string {
	var sb strings.Builder
	for i, idx := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}

func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(make(Path, 0, len(p)), p...)
}

// Parent returns p without its last element. The root's parent is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1].Clone()
}

// Child returns a new path extended by idx.
func (p Path) Child(idx int) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, idx)
}

func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is an ancestor-or-self of p.
func (p Path) HasPrefix(prefix Path) bool {
	return len(prefix) <= len(p) && prefix.Equal(p[:len(prefix)])
}

// IsMainline reports whether every index is zero.
func (p Path) IsMainline() bool {
	for _, i := range p {
		if i != 0 {
			return false
		}
	}
	return true
}

// Resolve walks path from root and returns the deepest node reached together
// with how many indices were consumed. An out-of-range index stops the walk
// instead of failing; callers that need an exact match compare depth with
// len(path).
func Resolve(root *Node, path Path) (*Node, int) {
	n := root
	for depth, idx := range path {
		if idx < 0 || idx >= len(n.Children) {
			return n, depth
		}
		n = n.Children[idx]
	}
	return n, len(path)
}

// NodeAt returns the node at path, or nil when the path does not fully resolve.
func NodeAt(root *Node, path Path) *Node {
	n, depth := Resolve(root, path)
	if depth != len(path) {
		return nil
	}
	return n
}

// Line returns the nodes from root to the node at path inclusive (truncated
// at the deepest resolvable node).
func Line(root *Node, path Path) []*Node {
	line := make([]*Node, 0, len(path)+1)
	n := root
	line = append(line, n)
	for _, idx := range path {
		if idx < 0 || idx >= len(n.Children) {
			break
		}
		n = n.Children[idx]
		line = append(line, n)
	}
	return line
}
