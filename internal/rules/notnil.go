package rules

import (
	"fmt"
	"strings"

	nchess "github.com/notnil/chess"

	"opening_tree/internal/domain/chess"
	errs "opening_tree/internal/errors"
)

// Notnil implements Engine with github.com/notnil/chess.
type Notnil struct{}

func NewNotnil() Notnil {
	return Notnil{}
}

func (Notnil) DefaultFEN() string {
	return chess.StartFEN
}

func (Notnil) Position(fen string) (Position, error) {
	pos := &nchess.Position{}
	if err := pos.UnmarshalText([]byte(strings.TrimSpace(fen))); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPosition, err)
	}
	return &notnilPosition{pos: pos}, nil
}

// notnilPosition wraps an immutable *chess.Position; Update returns a fresh
// value, so Clone only copies the wrapper.
type notnilPosition struct {
	pos *nchess.Position
}

// FEN keeps the en passant square only when a capture there is legal, so a
// position reached by a double push compares equal to its repetitions.
func (p *notnilPosition) FEN() string {
	fields := strings.Fields(p.pos.String())
	if len(fields) > 3 && fields[3] != "-" && !p.canCaptureEnPassant() {
		fields[3] = "-"
	}
	return strings.Join(fields, " ")
}

func (p *notnilPosition) canCaptureEnPassant() bool {
	for _, m := range p.pos.ValidMoves() {
		if m.HasTag(nchess.EnPassant) {
			return true
		}
	}
	return false
}

func (p *notnilPosition) Turn() chess.Color {
	if p.pos.Turn() == nchess.Black {
		return chess.Black
	}
	return chess.White
}

func (p *notnilPosition) Clone() Position {
	return &notnilPosition{pos: p.pos}
}

func (p *notnilPosition) DecodeSAN(san string) (chess.Move, error) {
	m, err := nchess.AlgebraicNotation{}.Decode(p.pos, strings.TrimSpace(san))
	if err != nil {
		return chess.Move{}, fmt.Errorf("%w: %s", errs.ErrIllegalMove, san)
	}
	return fromNotnil(m), nil
}

func (p *notnilPosition) DecodeUCI(uci string) (chess.Move, error) {
	mv, err := chess.ParseUCI(uci)
	if err != nil {
		return chess.Move{}, fmt.Errorf("%w: %v", errs.ErrIllegalMove, err)
	}
	if p.find(mv) == nil {
		return chess.Move{}, fmt.Errorf("%w: %s", errs.ErrIllegalMove, uci)
	}
	return mv, nil
}

func (p *notnilPosition) Legal(m chess.Move) bool {
	return !m.IsNull() && p.find(m) != nil
}

func (p *notnilPosition) SAN(m chess.Move) (string, error) {
	nm := p.find(m)
	if nm == nil {
		return "", fmt.Errorf("%w: %s", errs.ErrIllegalMove, m.UCI())
	}
	return nchess.AlgebraicNotation{}.Encode(p.pos, nm), nil
}

func (p *notnilPosition) Play(m chess.Move) error {
	nm := p.find(m)
	if nm == nil {
		return fmt.Errorf("%w: %s", errs.ErrIllegalMove, m.UCI())
	}
	p.pos = p.pos.Update(nm)
	return nil
}

func (p *notnilPosition) Outcome() chess.Outcome {
	switch p.pos.Status() {
	case nchess.Checkmate:
		return chess.Checkmate
	case nchess.Stalemate:
		return chess.Stalemate
	}
	if insufficientMaterial(p.pos.Board()) {
		return chess.InsufficientMaterial
	}
	return chess.NoOutcome
}

func (p *notnilPosition) find(m chess.Move) *nchess.Move {
	if m.IsNull() {
		return nil
	}
	want := m.UCI()
	for _, vm := range p.pos.ValidMoves() {
		if vm.String() == want {
			return vm
		}
	}
	return nil
}

func fromNotnil(m *nchess.Move) chess.Move {
	mv := chess.Move{From: m.S1().String(), To: m.S2().String()}
	if m.Promo() != nchess.NoPieceType {
		mv.Promotion = m.Promo().String()
	}
	return mv
}

// insufficientMaterial: K vs K, K+minor vs K, and kings with bishops all on
// one square colour.
func insufficientMaterial(b *nchess.Board) bool {
	var knights, bishops int
	bishopColors := map[int]bool{}
	for sq, pc := range b.SquareMap() {
		switch pc.Type() {
		case nchess.King:
		case nchess.Knight:
			knights++
		case nchess.Bishop:
			bishops++
			bishopColors[(int(sq.File())+int(sq.Rank()))%2] = true
		default:
			return false
		}
	}
	switch {
	case knights == 0 && bishops == 0:
		return true
	case knights+bishops == 1:
		return true
	case knights == 0 && len(bishopColors) == 1:
		return true
	}
	return false
}
