package tree

import (
	"opening_tree/internal/domain/chess"
)

// mv builds a node for structural tests; FEN only needs to be unique.
func mv(san string, children ...*Node) *Node {
	return &Node{
		FEN:      "fen " + san,
		Move:     &chess.Move{From: "a1", To: "a2"},
		SAN:      san,
		Children: append([]*Node{}, children...),
	}
}

// sampleState is
//
//	root
//	├─ e4 ─┬─ e5 ── Nf3
//	│      └─ c5 ── Nc3
//	└─ d4 ── d5
func sampleState() *State {
	root := NewRoot(chess.StartFEN)
	root.Children = []*Node{
		mv("e4",
			mv("e5", mv("Nf3")),
			mv("c5", mv("Nc3")),
		),
		mv("d4", mv("d5")),
	}
	return &State{Root: root, Position: Path{}, Headers: DefaultHeaders()}
}

func sans(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.SAN)
	}
	return out
}
