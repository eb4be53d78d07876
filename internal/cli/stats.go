package cli

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"opening_tree/internal/domain/tree"
)

// GameStats summarises one game tree.
type GameStats struct {
	File       string `json:"file"`
	Game       int    `json:"game"`
	White      string `json:"white"`
	Black      string `json:"black"`
	Result     string `json:"result"`
	Nodes      int    `json:"nodes"`
	Depth      int    `json:"depth"`
	Mainline   int    `json:"mainline"`
	Variations int    `json:"variations"`
	Positions  int    `json:"positions"`
}

func statsFor(file string, game int, s *tree.State) GameStats {
	variations := 0
	tree.Walk(s.Root, func(n *tree.Node, _ func() tree.Path) bool {
		if len(n.Children) > 1 {
			variations += len(n.Children) - 1
		}
		return true
	})
	return GameStats{
		File:       file,
		Game:       game,
		White:      s.Headers.White,
		Black:      s.Headers.Black,
		Result:     s.Headers.Result,
		Nodes:      tree.Count(s.Root),
		Depth:      tree.MaxDepth(s.Root),
		Mainline:   len(tree.MainlinePath(s.Root)),
		Variations: variations,
		Positions:  len(tree.BuildIndex(s.Root)),
	}
}

// collectPGNFiles returns path itself for a file, or every .pgn file below
// it for a directory, sorted.
func collectPGNFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pgn") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// NewStatsCommand prints tree statistics for a file or a directory of files.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats <file|dir>",
		Short:         "Print node, depth and variation counts per game",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk := newToolkit(rootOpts)
			files, err := collectPGNFiles(args[0])
			if err != nil {
				return err
			}

			var all []GameStats
			for _, f := range files {
				text, err := readInput(cmd, f)
				if err != nil {
					return err
				}
				games, err := tk.codec.ParseGames(text)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				for i, g := range games {
					all = append(all, statsFor(f, i+1, g))
				}
			}

			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(all)
			}
			for _, s := range all {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s - %s %s: %d nodes, depth %d, mainline %d, %d variations, %d positions\n",
					s.File, s.Game, s.White, s.Black, s.Result, s.Nodes, s.Depth, s.Mainline, s.Variations, s.Positions)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}
