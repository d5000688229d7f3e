package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/pipeline"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Dialects []string
	Notices  []string
}

// NewParseCommand creates the parse command.
func NewParseCommand(g *GlobalOptions) *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <export>...",
		Short: "Dump parsed messages as JSON lines",
		Long: `Parse chat exports and write one JSON object per message to stdout.

Continuation lines are joined onto their message, system notices are removed
and every message carries its derived features (words, emoji, links,
mentions). Several exports are merged into one timeline.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(commandContext(cmd.Context()), g, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringSliceVar(&opts.Dialects, "dialect", nil, "Only match these dialects (can be repeated)")
	cmd.Flags().StringSliceVar(&opts.Notices, "notice", nil, "Extra notice phrase to filter (can be repeated)")

	return cmd
}

func runParse(ctx context.Context, g *GlobalOptions, opts *ParseOptions, args []string, stdout, stderr io.Writer) error {
	cfg, err := g.loadConfig(ctx)
	if err != nil {
		return err
	}
	if len(opts.Dialects) > 0 {
		cfg.Parser.Dialects = opts.Dialects
	}
	cfg.Parser.Notices = append(cfg.Parser.Notices, opts.Notices...)
	logger := g.logger(cfg)

	files, err := parser.ExpandExports(args)
	if err != nil {
		return fmt.Errorf("expanding exports: %w", err)
	}

	sources := make([]pipeline.Source, len(files))
	for i, f := range files {
		sources[i] = pipeline.FileSource(f)
	}

	msgs, stats, err := pipeline.Parse(ctx, sources, pipeline.Options{Config: cfg, Logger: logger})
	if err != nil {
		if isNoData(err) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			ExitCode = ExitNoData
			return nil
		}
		return err
	}

	logger.Info("parsed exports",
		slog.Int("files", len(files)),
		slog.Int("messages", len(msgs)),
		slog.Int("filtered", stats.Filtered),
		slog.Int("dropped", stats.Dropped))

	return output.WriteMessages(ctx, msgs, stdout)
}
