package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"opening_tree/internal/pgn"
	"opening_tree/internal/rules"
	"opening_tree/internal/usecase/moves"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

var ValidFormats = []string{"text", "json"}

// toolkit is what every command works with.
type toolkit struct {
	codec   *pgn.Codec
	applier *moves.Applier
	log     *zap.SugaredLogger
}

func newToolkit(opts *RootOptions) *toolkit {
	log := zap.NewNop().Sugar()
	if opts.Verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l.Sugar()
		}
	}
	engine := rules.NewNotnil()
	return &toolkit{
		codec:   pgn.NewCodec(engine, nil, log),
		applier: moves.NewApplier(engine, log),
		log:     log,
	}
}

// NewRootCommand creates the pgntool command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pgntool",
		Short: "Inspect and rewrite PGN game trees",
		Long:  "Reads PGN files into move trees and writes them back: reformatting, mainline extraction and tree statistics.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log skipped moves and markup")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewMainlineCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))

	return cmd
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	var (
		raw []byte
		err error
	)
	if name == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(raw), nil
}
