package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoGames = `[Event "A"]
[White "Alice"]
[Black "Bob"]

1. e4 e5 (1... c5) 2. Nf3 $1 {develops} *

[Event "B"]

1. d4 d5 1/2-1/2
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"fmt", "mainline", "stats", "play"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("format"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, twoGames, "mainline", "--format", "yaml", "-")
	assert.ErrorContains(t, err, "invalid format")
}

func TestMainline(t *testing.T) {
	out, err := run(t, twoGames, "mainline", "-")
	require.NoError(t, err)
	assert.Equal(t, "e4 e5 Nf3\nd4 d5\n", out)

	out, err = run(t, twoGames, "mainline", "--format", "json", "-")
	require.NoError(t, err)
	var lines [][]string
	require.NoError(t, json.Unmarshal([]byte(out), &lines))
	assert.Equal(t, [][]string{{"e4", "e5", "Nf3"}, {"d4", "d5"}}, lines)
}

func TestFmt(t *testing.T) {
	out, err := run(t, twoGames, "fmt", "--no-headers", "--no-comments", "--numeric-nags", "-")
	require.NoError(t, err)
	assert.Equal(t, "1. e4 e5 (1... c5) 2. Nf3 $1 *\n\n1. d4 d5 1/2-1/2\n", out)

	out, err = run(t, twoGames, "fmt", "--no-headers", "--no-variations", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1. e4 e5 2. Nf3! {develops} *"), out)
}

func TestPlay(t *testing.T) {
	out, err := run(t, "", "play", "e4", "e5", "Qh5", "Nc6", "Bc4", "Nf6", "Qxf7#")
	require.NoError(t, err)
	assert.Contains(t, out, `[Result "1-0"]`)
	assert.Contains(t, out, "1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0")

	_, err = run(t, "", "play", "e4", "e4")
	assert.ErrorContains(t, err, "move 2 (e4)")

	_, err = run(t, "", "play", "--fen", "bogus", "e4")
	assert.ErrorContains(t, err, "bad --fen")
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "games.pgn"), []byte(twoGames), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a game"), 0o600))

	out, err := run(t, "", "stats", "--format", "json", dir)
	require.NoError(t, err)

	var stats []GameStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.Len(t, stats, 2)

	first := stats[0]
	assert.Equal(t, 1, first.Game)
	assert.Equal(t, "Alice", first.White)
	assert.Equal(t, 5, first.Nodes)
	assert.Equal(t, 3, first.Depth)
	assert.Equal(t, 3, first.Mainline)
	assert.Equal(t, 1, first.Variations)
	assert.Equal(t, 5, first.Positions)

	assert.Equal(t, 2, stats[1].Game)
	assert.Equal(t, "1/2-1/2", stats[1].Result)

	_, err = run(t, "", "stats", filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
