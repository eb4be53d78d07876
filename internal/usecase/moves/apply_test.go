package moves

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"opening_tree/internal/domain/chess"
	"opening_tree/internal/domain/tree"
	errs "opening_tree/internal/errors"
	"opening_tree/internal/rules"
)

func newApplier() *Applier {
	return NewApplier(rules.NewNotnil(), zap.NewNop().Sugar())
}

func play(t *testing.T, a *Applier, s *tree.State, opts Options, notations ...string) {
	t.Helper()
	for _, n := range notations {
		_, err := a.MakeMove(s, n, opts)
		require.NoError(t, err, n)
	}
}

func TestMakeMoveBuildsMainline(t *testing.T) {
	a := newApplier()
	s := tree.New("")

	cue, err := a.MakeMove(s, "e4", Options{})
	require.NoError(t, err)
	assert.Equal(t, CueMove, cue)
	play(t, a, s, Options{}, "e5", "Nf3")

	assert.Equal(t, tree.Path{0, 0, 0}, s.Position)
	cur := s.Current()
	assert.Equal(t, "Nf3", cur.SAN)
	assert.Equal(t, 3, cur.HalfMoves)
	assert.Equal(t, chess.Move{From: "g1", To: "f3"}, *cur.Move)
	assert.Equal(t, chess.Black, chess.TurnFromFEN(cur.FEN))
	assert.True(t, s.Dirty)
}

func TestMakeMoveFollowsExistingChild(t *testing.T) {
	a := newApplier()
	s := tree.New("")
	play(t, a, s, Options{}, "e4", "e5")
	s.ToStart()
	root := s.Root

	play(t, a, s, Options{}, "e4", "e7e5")
	assert.Same(t, root, s.Root, "replaying known moves does not clone")
	assert.Equal(t, tree.Path{0, 0}, s.Position)
	assert.Equal(t, 3, tree.Count(s.Root))
}

func TestMakeMoveRejectsIllegalMove(t *testing.T) {
	a := newApplier()
	s := tree.New("")
	play(t, a, s, Options{}, "e4")
	root, pos := s.Root, s.Position.Clone()

	for _, bad := range []string{"e4", "Ke2", "xx", "e7e4", ""} {
		_, err := a.MakeMove(s, bad, Options{})
		assert.ErrorIs(t, err, errs.ErrIllegalMove, bad)
	}
	assert.Same(t, root, s.Root)
	assert.Equal(t, pos, s.Position)

	_, err := a.Play(s, chess.Move{From: "e7", To: "e7"}, Options{})
	assert.ErrorIs(t, err, errs.ErrIllegalMove)
}

func TestMakeMoveAddsVariations(t *testing.T) {
	a := newApplier()
	s := tree.New("")
	play(t, a, s, Options{}, "e4", "e5")

	s.ToStart()
	play(t, a, s, Options{}, "d4")
	assert.Equal(t, tree.Path{1}, s.Position)

	s.ToStart()
	play(t, a, s, Options{Mainline: true}, "c4")
	assert.Equal(t, tree.Path{0}, s.Position)

	var got []string
	for _, c := range s.Root.Children {
		got = append(got, c.SAN)
	}
	assert.Equal(t, []string{"c4", "e4", "d4"}, got)
}

func TestPlayTypedMove(t *testing.T) {
	a := newApplier()
	s := tree.New("")

	cue, err := a.Play(s, chess.Move{From: "g1", To: "f3"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, CueMove, cue)
	assert.Equal(t, "Nf3", s.Current().SAN)
}

func TestCheckmateSetsResult(t *testing.T) {
	a := newApplier()
	s := tree.New("")
	play(t, a, s, Options{UpdateHeaders: true}, "f3", "e5", "g4")

	cue, err := a.MakeMove(s, "Qh4#", Options{UpdateHeaders: true})
	require.NoError(t, err)
	assert.Equal(t, CueCheck, cue)
	assert.Equal(t, chess.ResultBlackWins, s.Headers.Result)
}

func TestInsufficientMaterialSetsDraw(t *testing.T) {
	a := newApplier()
	s := tree.New("k7/8/8/8/8/8/1n6/K7 w - - 0 1")

	cue, err := a.MakeMove(s, "Kxb2", Options{UpdateHeaders: true})
	require.NoError(t, err)
	assert.Equal(t, CueCapture, cue)
	assert.Equal(t, chess.ResultDraw, s.Headers.Result)
}

func TestThreefoldRepetition(t *testing.T) {
	shuffle := []string{"Nf3", "Nf6", "Ng1", "Ng8"}

	t.Run("detected on the third occurrence", func(t *testing.T) {
		a := newApplier()
		s := tree.New("")
		play(t, a, s, Options{UpdateHeaders: true}, shuffle...)
		assert.Equal(t, chess.ResultUnknown, s.Headers.Result, "second occurrence is not a draw")

		play(t, a, s, Options{UpdateHeaders: true}, shuffle...)
		assert.Equal(t, chess.ResultDraw, s.Headers.Result)
	})

	t.Run("position first reached by a double push", func(t *testing.T) {
		a := newApplier()
		s := tree.New("")
		play(t, a, s, Options{UpdateHeaders: true}, "e4", "Nf6", "Nf3", "Ng8", "Ng1")
		assert.Equal(t, chess.ResultUnknown, s.Headers.Result)

		play(t, a, s, Options{UpdateHeaders: true}, "Nf6", "Nf3", "Ng8", "Ng1")
		assert.Equal(t, chess.ResultDraw, s.Headers.Result)
	})

	t.Run("headers untouched without the option", func(t *testing.T) {
		a := newApplier()
		s := tree.New("")
		play(t, a, s, Options{}, append(shuffle, shuffle...)...)
		assert.Equal(t, chess.ResultUnknown, s.Headers.Result)
	})
}

const kingWalkFEN = "7k/7p/7P/8/8/8/8/K7 w - - 0 1"

// kingWalk returns 100 plies from kingWalkFEN with no pawn move or capture
// and no position occurring three times. The white king snakes from a1 to e6
// and back while the black king swaps between h8 and g8.
func kingWalk() []string {
	route := []string{
		"b1", "c1", "d1", "e1", "e2", "d2", "c2", "b2", "a2", "a3", "b3", "c3", "d3",
		"e3", "e4", "d4", "c4", "b4", "a4", "a5", "b5", "c5", "d5", "e5", "e6",
	}
	squares := append([]string{}, route...)
	for i := len(route) - 2; i >= 0; i-- {
		squares = append(squares, route[i])
	}
	squares = append(squares, "a1")

	var plies []string
	for i, sq := range squares {
		black := "Kg8"
		if i%2 == 1 {
			black = "Kh8"
		}
		plies = append(plies, "K"+sq, black)
	}
	return plies
}

func TestFiftyMoveRuleSetsDraw(t *testing.T) {
	plies := kingWalk()
	require.Len(t, plies, 100)

	a := newApplier()
	s := tree.New(kingWalkFEN)
	play(t, a, s, Options{UpdateHeaders: true}, plies[:99]...)
	assert.Equal(t, chess.ResultUnknown, s.Headers.Result)

	play(t, a, s, Options{UpdateHeaders: true}, plies[99])
	assert.Equal(t, chess.ResultDraw, s.Headers.Result)
	assert.Equal(t, 100, s.Current().HalfMoves)
}

func TestMakeMovesUpdatesHeaders(t *testing.T) {
	t.Run("checkmate", func(t *testing.T) {
		a := newApplier()
		s := tree.New("")
		n, err := a.MakeMoves(s, []string{"f3", "e5", "g4", "Qh4#"}, Options{UpdateHeaders: true})
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, chess.ResultBlackWins, s.Headers.Result)
	})

	t.Run("following known moves into mate", func(t *testing.T) {
		a := newApplier()
		s := tree.New("")
		play(t, a, s, Options{}, "f3", "e5", "g4", "Qh4#")
		s.ToStart()

		_, err := a.MakeMoves(s, []string{"f3", "e5", "g4", "Qh4#"}, Options{UpdateHeaders: true})
		require.NoError(t, err)
		assert.Equal(t, chess.ResultBlackWins, s.Headers.Result)
	})

	t.Run("threefold", func(t *testing.T) {
		a := newApplier()
		s := tree.New("")
		_, err := a.MakeMoves(s, []string{"e4", "Nf6", "Nf3", "Ng8", "Ng1", "Nf6", "Nf3", "Ng8", "Ng1"}, Options{UpdateHeaders: true})
		require.NoError(t, err)
		assert.Equal(t, chess.ResultDraw, s.Headers.Result)
	})

	t.Run("fifty moves", func(t *testing.T) {
		a := newApplier()
		s := tree.New(kingWalkFEN)
		n, err := a.MakeMoves(s, kingWalk(), Options{UpdateHeaders: true})
		require.NoError(t, err)
		assert.Equal(t, 100, n)
		assert.Equal(t, chess.ResultDraw, s.Headers.Result)
	})

	t.Run("headers untouched without the option", func(t *testing.T) {
		a := newApplier()
		s := tree.New("")
		_, err := a.MakeMoves(s, []string{"f3", "e5", "g4", "Qh4#"}, Options{})
		require.NoError(t, err)
		assert.Equal(t, chess.ResultUnknown, s.Headers.Result)
	})
}

func TestMakeMovesFollowsThenBranches(t *testing.T) {
	a := newApplier()
	s := tree.New("")
	play(t, a, s, Options{}, "e4", "e5", "Nf3")
	s.ToStart()

	n, err := a.MakeMoves(s, []string{"e4", "e5", "Bc4", "Nc6", "Qh5"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, tree.Path{0, 0, 1, 0, 0}, s.Position)
	assert.Equal(t, "Qh5", s.Current().SAN)
	assert.Equal(t, "Nf3", tree.NodeAt(s.Root, tree.Path{0, 0, 0}).SAN)
}

func TestMakeMovesStopsAtBadMove(t *testing.T) {
	a := newApplier()
	s := tree.New("")

	n, err := a.MakeMoves(s, []string{"d4", "d5", "d5", "c4"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, tree.Path{0, 0}, s.Position)
	assert.Equal(t, 3, tree.Count(s.Root))
}

func TestMakeMovesAllKnown(t *testing.T) {
	a := newApplier()
	s := tree.New("")
	play(t, a, s, Options{}, "e4", "c5")
	s.ToStart()
	root := s.Root

	n, err := a.MakeMoves(s, []string{"e2e4", "c5"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Same(t, root, s.Root)
	assert.Equal(t, tree.Path{0, 0}, s.Position)
}

func TestCueFor(t *testing.T) {
	assert.Equal(t, CueMove, CueFor("Nf3"))
	assert.Equal(t, CueCapture, CueFor("exd5"))
	assert.Equal(t, CueCheck, CueFor("Bxf7+"))
	assert.Equal(t, CueCheck, CueFor("Qh4#"))
}
