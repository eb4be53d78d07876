package pgn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opening_tree/internal/domain/tree"
)

func TestParseComment(t *testing.T) {
	cm := parseComment("  [%eval -1.25,18] keeps  the [%clk 1:02:03.5] pressure [%csl Gd4,Zc3,Ye5][%cal Bg1f3] ")

	require.NotNil(t, cm.Score)
	require.NotNil(t, cm.Score.CP)
	assert.Equal(t, -125, *cm.Score.CP)
	assert.Equal(t, 18, cm.Score.Depth)

	require.NotNil(t, cm.Clock)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second+500*time.Millisecond, *cm.Clock)

	assert.Equal(t, []tree.Shape{
		{Orig: "d4", Brush: tree.BrushGreen},
		{Orig: "e5", Brush: tree.BrushYellow},
		{Orig: "g1", Dest: "f3", Brush: tree.BrushBlue},
	}, cm.Shapes)
	assert.Equal(t, "keeps the pressure", cm.Text)
}

func TestParseEval(t *testing.T) {
	tests := []struct {
		arg   string
		cp    *int
		mate  *int
		depth int
		ok    bool
	}{
		{arg: "0.30", cp: intPtr(30), ok: true},
		{arg: "#-3,40", mate: intPtr(-3), depth: 40, ok: true},
		{arg: "#2", mate: intPtr(2), ok: true},
		{arg: "abc"},
		{arg: "#x"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			s, ok := parseEval(tt.arg)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.cp, s.CP)
			assert.Equal(t, tt.mate, s.Mate)
			assert.Equal(t, tt.depth, s.Depth)
		})
	}
}

func TestClockFormatting(t *testing.T) {
	d, ok := parseClock("0:01:05.5")
	require.True(t, ok)
	assert.Equal(t, 65*time.Second+500*time.Millisecond, d)
	assert.Equal(t, "0:01:05.5", formatClock(d))
	assert.Equal(t, "2:00:00", formatClock(2*time.Hour))

	_, ok = parseClock("1:2:3:4")
	assert.False(t, ok)
	_, ok = parseClock("-1:00")
	assert.False(t, ok)
}

func TestFormatComment(t *testing.T) {
	clock := 5 * time.Minute
	n := &tree.Node{
		Score:   tree.MateScore(-2),
		Clock:   &clock,
		Comment: "trap}",
		Shapes: []tree.Shape{
			{Orig: "e4", Dest: "e5", Brush: tree.BrushRed},
			{Orig: "d4", Brush: tree.BrushGreen},
		},
	}

	assert.Equal(t, "{[%eval #-2] [%clk 0:05:00] [%csl Gd4] [%cal Re4e5] trap)}", formatComment(n, true, true))
	assert.Equal(t, "{trap)}", formatComment(n, false, true))
	assert.Equal(t, "{[%eval #-2] [%clk 0:05:00] [%csl Gd4] [%cal Re4e5]}", formatComment(n, true, false))
	assert.Empty(t, formatComment(n, false, false))
	assert.Empty(t, formatComment(&tree.Node{}, true, true))
}

func intPtr(v int) *int { return &v }
