package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/pipeline"
	"github.com/ccollicutt/chatlens/internal/watch"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	Output   string
	Debounce time.Duration
	Quiet    bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(g *GlobalOptions) *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <export>...",
		Short: "Re-analyze exports whenever they change",
		Long: `Analyze chat exports, then watch them and print a fresh report each time
one is rewritten. Arguments may be files or directories of .txt exports;
new exports dropped into a watched directory are picked up.

Stop with Ctrl-C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, g, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "Wait for writes to settle before re-analyzing")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", true, "Print only the summary line on each change")

	return cmd
}

func runWatch(ctx context.Context, g *GlobalOptions, opts *WatchOptions, args []string, stdout, stderr io.Writer) error {
	cfg, err := g.loadConfig(ctx)
	if err != nil {
		return err
	}
	logger := g.logger(cfg)

	formatter, err := output.New(opts.Output, formatOptions(false, opts.Quiet))
	if err != nil {
		return err
	}

	w, err := watch.New(args, watch.WithDebounce(opts.Debounce), watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	analyzeOnce(ctx, cfg, args, formatter, stdout, stderr, logger)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for batch := range w.Changes() {
		logger.Info("exports changed", slog.Any("files", batch))
		analyzeOnce(ctx, cfg, args, formatter, stdout, stderr, logger)
	}

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// analyzeOnce runs the pipeline over the current exports. Failures are
// reported and watching continues.
func analyzeOnce(ctx context.Context, cfg *config.Config, args []string, f output.Formatter, stdout, stderr io.Writer, logger *slog.Logger) {
	files, err := parser.ExpandExports(args)
	if err != nil || len(files) == 0 {
		_, _ = fmt.Fprintf(stderr, "Error: no exports matched %v\n", args)
		return
	}

	sources := make([]pipeline.Source, len(files))
	for i, file := range files {
		sources[i] = pipeline.FileSource(file)
	}

	report, err := pipeline.Run(ctx, sources, pipeline.Options{Config: cfg, Logger: logger})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return
	}
	if err := f.Format(ctx, report, stdout); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: formatting output: %v\n", err)
	}
}
