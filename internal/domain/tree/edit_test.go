package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "opening_tree/internal/errors"
)

func TestClonePathSharesUntouchedSubtrees(t *testing.T) {
	s := sampleState()
	old := s.Root
	oldE4 := old.Children[0]
	oldD4 := old.Children[1]
	oldC5 := oldE4.Children[1]

	s.GoTo(Path{0, 0})
	require.True(t, s.SetComment("main"))

	assert.NotSame(t, old, s.Root)
	assert.NotSame(t, oldE4, s.Root.Children[0])
	assert.Same(t, oldD4, s.Root.Children[1], "sibling of the edited chain is shared")
	assert.Same(t, oldC5, s.Root.Children[0].Children[1], "variation beside the target is shared")
	assert.Same(t, oldE4.Children[0].Children[0], s.Root.Children[0].Children[0].Children[0], "descendants of the target are shared")

	assert.Equal(t, "main", s.Current().Comment)
	assert.Empty(t, oldE4.Children[0].Comment, "the old tree is untouched")
	assert.True(t, s.Dirty)
}

func TestNoOpEditsDoNotClone(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{0})
	root := s.Root

	assert.False(t, s.SetComment(""))
	assert.False(t, s.ClearShapes())
	assert.False(t, s.SetShapes(nil))
	assert.False(t, s.SetClock(nil))
	assert.False(t, s.SetScore(nil))
	assert.False(t, s.ToggleAnnotation(Annotation("nonsense")))
	assert.Same(t, root, s.Root)
	assert.False(t, s.Dirty)
}

func TestToggleAnnotationQualityIsExclusive(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{0})

	require.True(t, s.ToggleAnnotation(WhiteBetter))
	require.True(t, s.ToggleAnnotation(Good))
	assert.Equal(t, []Annotation{Good, WhiteBetter}, s.Current().Annotations)

	require.True(t, s.ToggleAnnotation(Blunder))
	assert.Equal(t, []Annotation{Blunder, WhiteBetter}, s.Current().Annotations)

	require.True(t, s.ToggleAnnotation(Blunder))
	assert.Equal(t, []Annotation{WhiteBetter}, s.Current().Annotations)
}

func TestShapesAndClock(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{0})
	arrow := Shape{Orig: "e2", Dest: "e4", Brush: BrushGreen}
	square := Shape{Orig: "d5", Brush: BrushRed}

	require.True(t, s.ToggleShape(arrow))
	require.True(t, s.ToggleShape(square))
	assert.Equal(t, []Shape{arrow, square}, s.Current().Shapes)
	require.True(t, s.ToggleShape(arrow))
	assert.Equal(t, []Shape{square}, s.Current().Shapes)
	require.True(t, s.ClearShapes())
	assert.Empty(t, s.Current().Shapes)

	clock := 90 * time.Second
	require.True(t, s.SetClock(&clock))
	same := 90 * time.Second
	assert.False(t, s.SetClock(&same))
	assert.Equal(t, clock, *s.Current().Clock)
}

func TestSetScoreAtKeepsCursor(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{1, 0})

	require.True(t, s.SetScoreAt(Path{0, 1}, CPScore(-35)))
	assert.Equal(t, Path{1, 0}, s.Position)
	assert.True(t, NodeAt(s.Root, Path{0, 1}).Score.Equal(CPScore(-35)))
	assert.False(t, s.SetScoreAt(Path{0, 1}, CPScore(-35)))
	assert.False(t, s.SetScoreAt(Path{4}, MateScore(2)))
}

func TestAttachChild(t *testing.T) {
	s := sampleState()

	p, err := s.AttachChild(Path{0}, mv("e6"), false)
	require.NoError(t, err)
	assert.Equal(t, Path{0, 2}, p)
	assert.Equal(t, p, s.Position)

	p, err = s.AttachChild(Path{0}, mv("c6"), true)
	require.NoError(t, err)
	assert.Equal(t, Path{0, 0}, p)
	assert.Equal(t, []string{"c6", "e5", "c5", "e6"}, sans(s.Root.Children[0].Children))
}

func TestAttachChildRejectsBadParentAndCycles(t *testing.T) {
	s := sampleState()
	root := s.Root

	_, err := s.AttachChild(Path{0, 9}, mv("x"), false)
	assert.ErrorIs(t, err, errs.ErrInvalidPath)

	_, err = s.AttachChild(Path{0, 0}, s.Root.Children[0], false)
	assert.ErrorIs(t, err, errs.ErrCycle)
	assert.Same(t, root, s.Root)

	e5 := s.Root.Children[0].Children[0]
	_, err = s.AttachChild(Path{1}, e5, false)
	assert.ErrorIs(t, err, errs.ErrAlreadyAttached)
	assert.Same(t, root, s.Root)
	assert.Equal(t, []string{"d5"}, sans(s.Root.Children[1].Children))

	_, err = s.AttachChild(Path{1, 0}, s.Root.Children[1].Children[0], false)
	assert.ErrorIs(t, err, errs.ErrCycle, "the parent itself")
}

func TestDeleteMoveCursorInsideSubtree(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{0, 1, 0})

	require.True(t, s.DeleteMove(Path{0, 1}))
	assert.Equal(t, Path{0}, s.Position)
	assert.Equal(t, []string{"e5"}, sans(s.Root.Children[0].Children))
}

func TestDeleteMoveResetsSiblingIndex(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{0, 1, 0})

	require.True(t, s.DeleteMove(Path{0, 0}))
	assert.Equal(t, Path{0, 0, 0}, s.Position)
	assert.Equal(t, "Nc3", s.Current().SAN)
}

func TestDeleteMoveLeavesUnrelatedCursor(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{1, 0})

	require.True(t, s.DeleteMove(Path{0, 1}))
	assert.Equal(t, Path{1, 0}, s.Position)
	assert.False(t, s.DeleteMove(Path{}))
	assert.False(t, s.DeleteMove(Path{5}))
}

func TestPromoteVariation(t *testing.T) {
	s := sampleState()
	s.Root.Children[0].Children = append(s.Root.Children[0].Children, mv("e6"))

	require.True(t, s.PromoteVariation(Path{0, 2}))
	assert.Equal(t, []string{"e6", "e5", "c5"}, sans(s.Root.Children[0].Children))
	assert.Equal(t, Path{0, 0}, s.Position)

	assert.False(t, s.PromoteVariation(Path{0, 0}))
}

func TestPromoteVariationPicksDeepestSideStep(t *testing.T) {
	s := sampleState()

	require.True(t, s.PromoteVariation(Path{1, 0}))
	assert.Equal(t, []string{"d4", "e4"}, sans(s.Root.Children))
	assert.Equal(t, Path{0, 0}, s.Position)
}

func TestPromoteToMainline(t *testing.T) {
	s := sampleState()
	s.Root.Children[1].Children[0].Children = []*Node{mv("c4"), mv("Nf3x")}

	require.True(t, s.PromoteToMainline(Path{1, 0, 1}))
	assert.Equal(t, Path{0, 0, 0}, s.Position)
	assert.Equal(t, []string{"d4", "d5", "Nf3x"}, sans(Line(s.Root, MainlinePath(s.Root))[1:]))

	assert.False(t, s.PromoteToMainline(Path{0, 0, 0}))
}

func TestPromoteToMainlineTrimsUnresolvedPath(t *testing.T) {
	s := sampleState()

	require.True(t, s.PromoteToMainline(Path{1, 0, 4}))
	assert.Equal(t, Path{0, 0}, s.Position)
	assert.Equal(t, "d5", s.Current().SAN)
}

func TestNavigation(t *testing.T) {
	s := sampleState()

	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.Equal(t, Path{0, 0}, s.Position)
	s.ToEnd()
	assert.Equal(t, Path{0, 0, 0}, s.Position)
	assert.False(t, s.Next())
	assert.True(t, s.Previous())
	assert.Equal(t, Path{0, 0}, s.Position)
	s.ToStart()
	assert.False(t, s.Previous())

	s.GoTo(Path{0, 1, 7})
	assert.Equal(t, Path{0, 1}, s.Position)
}

func TestSetStartReplacesTree(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{0, 0})
	s.Headers.Start = Path{0}
	fen := "8/8/8/8/8/8/8/K6k w - - 0 1"

	s.SetStart(fen, "default")
	assert.Equal(t, fen, s.Root.FEN)
	assert.Empty(t, s.Root.Children)
	assert.Equal(t, Path{}, s.Position)
	assert.Equal(t, fen, s.Headers.FEN)
	assert.Nil(t, s.Headers.Start)

	s.SetStart("default", "default")
	assert.Empty(t, s.Headers.FEN)
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := sampleState()
	s.GoTo(Path{0, 1})
	s.Headers.Extra = map[string]string{"ECO": "B20"}
	snap := s.Snapshot()

	s.Headers.Extra["ECO"] = "C20"
	s.GoTo(Path{1})
	require.True(t, s.SetComment("changed"))

	assert.Equal(t, "B20", snap.Headers.Extra["ECO"])
	assert.Equal(t, Path{0, 1}, snap.Position)
	assert.Empty(t, NodeAt(snap.Root, Path{1}).Comment)
}
