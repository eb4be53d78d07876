package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"opening_tree/internal/domain/tree"
	"opening_tree/internal/pgn"
	"opening_tree/internal/usecase/moves"
)

type fmtOptions struct {
	noHeaders     bool
	noVariations  bool
	noComments    bool
	noAnnotations bool
	noMarkups     bool
	numericNAGs   bool
}

func (o fmtOptions) encode() pgn.EncodeOptions {
	return pgn.EncodeOptions{
		Headers:       !o.noHeaders,
		Variations:    !o.noVariations,
		Annotations:   !o.noAnnotations,
		Comments:      !o.noComments,
		Markups:       !o.noMarkups,
		NumericGlyphs: o.numericNAGs,
	}
}

// NewFmtCommand rewrites every game of a file in canonical form.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	var o fmtOptions
	cmd := &cobra.Command{
		Use:           "fmt <file|->",
		Short:         "Parse a PGN file and write it back in canonical form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk := newToolkit(rootOpts)
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			games, err := tk.codec.ParseGames(text)
			if err != nil {
				return err
			}
			out := make([]string, 0, len(games))
			for _, g := range games {
				out = append(out, pgn.Encode(g, o.encode()))
			}
			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, "\n\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&o.noHeaders, "no-headers", false, "omit the tag section")
	cmd.Flags().BoolVar(&o.noVariations, "no-variations", false, "write the mainline only")
	cmd.Flags().BoolVar(&o.noComments, "no-comments", false, "drop comment text")
	cmd.Flags().BoolVar(&o.noAnnotations, "no-annotations", false, "drop move and position glyphs")
	cmd.Flags().BoolVar(&o.noMarkups, "no-markups", false, "drop [%eval], [%clk], [%csl] and [%cal]")
	cmd.Flags().BoolVar(&o.numericNAGs, "numeric-nags", false, "write glyphs as $n")
	return cmd
}

// NewMainlineCommand prints the mainline moves of every game.
func NewMainlineCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "mainline <file|->",
		Short:         "Print the mainline moves of each game",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk := newToolkit(rootOpts)
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			games, err := tk.codec.ParseGames(text)
			if err != nil {
				return err
			}
			lines := make([][]string, 0, len(games))
			for _, g := range games {
				lines = append(lines, mainlineSAN(g))
			}
			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(lines)
			}
			for _, l := range lines {
				if _, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(l, " ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func mainlineSAN(s *tree.State) []string {
	line := tree.Line(s.Root, tree.MainlinePath(s.Root))
	sans := make([]string, 0, len(line))
	for _, n := range line[1:] {
		sans = append(sans, n.SAN)
	}
	return sans
}

// NewPlayCommand builds a game from a list of moves and prints it as PGN.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	var fen string
	cmd := &cobra.Command{
		Use:           "play <move>...",
		Short:         "Play moves from a position and print the game",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk := newToolkit(rootOpts)
			if fen != "" {
				if _, err := tk.applier.Engine().Position(fen); err != nil {
					return fmt.Errorf("bad --fen: %w", err)
				}
			}
			st := tree.New(fen)
			for i, mv := range args {
				if _, err := tk.applier.MakeMove(st, mv, moves.Options{UpdateHeaders: true}); err != nil {
					return fmt.Errorf("move %d (%s): %w", i+1, mv, err)
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), pgn.Encode(st, pgn.DefaultEncodeOptions()))
			return err
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "", "starting position (standard start when empty)")
	return cmd
}
