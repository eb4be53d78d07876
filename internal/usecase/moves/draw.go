package moves

import (
	"opening_tree/internal/domain/chess"
	"opening_tree/internal/domain/tree"
)

const fiftyMoveHalfmoves = 100

// isThreefold reports whether the last node of line repeats a position that
// already occurred twice earlier on the same line. Move counters are ignored;
// transpositions in sibling variations do not count.
func isThreefold(line []*tree.Node) bool {
	if len(line) == 0 {
		return false
	}
	want := chess.StripFEN(line[len(line)-1].FEN)
	seen := 0
	for _, n := range line[:len(line)-1] {
		if chess.StripFEN(n.FEN) == want {
			seen++
		}
	}
	return seen >= 2
}

// halfmovesSinceReset counts plies from the end of line back to the last
// pawn move, capture or promotion, judged from the notation only.
func halfmovesSinceReset(line []*tree.Node) int {
	count := 0
	for i := len(line) - 1; i >= 0; i-- {
		san := line[i].SAN
		if san == "" {
			break
		}
		if resetsFiftyMoveCounter(san) {
			break
		}
		count++
	}
	return count
}

func isFiftyMoveDraw(line []*tree.Node) bool {
	return halfmovesSinceReset(line) >= fiftyMoveHalfmoves
}

// resetsFiftyMoveCounter: a SAN starting with a file letter is a pawn move,
// "x" marks a capture and "=" a promotion.
func resetsFiftyMoveCounter(san string) bool {
	if san[0] >= 'a' && san[0] <= 'h' {
		return true
	}
	for i := 0; i < len(san); i++ {
		if san[i] == 'x' || san[i] == '=' {
			return true
		}
	}
	return false
}
