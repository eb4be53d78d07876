// Package rules describes the chess rules capability the tree engine relies
// on and provides an implementation backed by github.com/notnil/chess.
package rules

import (
	"opening_tree/internal/domain/chess"
)

// Engine turns a FEN string into a live position.
type Engine interface {
	Position(fen string) (Position, error)
	DefaultFEN() string
}

// Position is a live board. Play mutates it, so a position that must be
// reused after a branch point has to be Cloned first.
type Position interface {
	FEN() string
	Turn() chess.Color
	// DecodeSAN parses standard algebraic notation against this position.
	DecodeSAN(san string) (chess.Move, error)
	// DecodeUCI parses coordinate notation and checks legality.
	DecodeUCI(uci string) (chess.Move, error)
	Legal(m chess.Move) bool
	// SAN renders a legal move, including check and mate markers.
	SAN(m chess.Move) (string, error)
	Play(m chess.Move) error
	Outcome() chess.Outcome
	Clone() Position
}

// Decode parses either notation, algebraic first.
func Decode(pos Position, notation string) (chess.Move, error) {
	m, err := pos.DecodeSAN(notation)
	if err == nil {
		return m, nil
	}
	return pos.DecodeUCI(notation)
}
