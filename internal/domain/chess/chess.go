package chess

import (
	"fmt"
	"strings"
)

// StartFEN стандартная начальная позиция
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

type Outcome int

const (
	NoOutcome Outcome = iota
	Checkmate
	Stalemate
	InsufficientMaterial
)

const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultUnknown   = "*"
)

// Move is a move in coordinate form: from/to squares plus an optional
// promotion piece letter ("q", "r", "b", "n").
type Move struct {
	From      string `json:"from" bson:"from"`
	To        string `json:"to" bson:"to"`
	Promotion string `json:"promotion,omitempty" bson:"promotion,omitempty"`
}

// UCI returns the move in coordinate notation, e.g. "e7e8q".
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

func (m Move) String() string {
	return m.UCI()
}

// IsNull reports a degenerate move that does not change the board.
func (m Move) IsNull() bool {
	return m.From == "" || m.To == "" || m.From == m.To
}

// ParseUCI parses coordinate notation ("e2e4", "a7a8q").
func ParseUCI(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("coordinate move %q: bad length", s)
	}
	if !isSquare(s[0:2]) || !isSquare(s[2:4]) {
		return Move{}, fmt.Errorf("coordinate move %q: bad square", s)
	}
	m := Move{From: s[0:2], To: s[2:4]}
	if len(s) == 5 {
		p := strings.ToLower(s[4:5])
		if !strings.Contains("qrbn", p) {
			return Move{}, fmt.Errorf("coordinate move %q: bad promotion", s)
		}
		m.Promotion = p
	}
	return m, nil
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// StripFEN drops the halfmove clock and fullmove number so positions that
// differ only in move counters compare equal.
func StripFEN(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// TurnFromFEN returns the side to move encoded in fen.
func TurnFromFEN(fen string) Color {
	fields := strings.Fields(fen)
	if len(fields) > 1 && fields[1] == "b" {
		return Black
	}
	return White
}
