package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/pipeline"
	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
	"github.com/ccollicutt/chatlens/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output  string
	TopN    int
	Gap     time.Duration
	Senders []string
	From    string
	To      string
	Jobs    int
	Verbose bool
	Quiet   bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(g *GlobalOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <export>...",
		Short: "Analyze chat exports",
		Long: `Parse one or more chat exports and report statistics.

Each argument may be a file, a glob or a directory of .txt exports. Several
exports of the same chat are merged into one timeline.

Reports:
  - Activity by hour, weekday, month and year
  - Per-sender message, word and emoji counts
  - Most used words, mentions, hashtags and emoji
  - Response times and conversation starters

Exit codes:
  0 - Analysis completed
  1 - No usable messages (empty chat, only system notices, or filtered out)
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(commandContext(cmd.Context()), g, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&opts.TopN, "top", 0, "Entries kept in ranked lists (default from config)")
	cmd.Flags().DurationVar(&opts.Gap, "gap", 0, "Silence that starts a new conversation (default from config)")
	cmd.Flags().StringSliceVar(&opts.Senders, "sender", nil, "Only analyze these senders (can be repeated)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Ignore messages before this date (2006-01-02 or RFC 3339)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Ignore messages after this date (2006-01-02 or RFC 3339)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "Exports parsed in parallel (default GOMAXPROCS)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include parse statistics and sources")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnSuccess), "When to fire webhook (on_success|always|never)")

	return cmd
}

func runAnalyze(ctx context.Context, g *GlobalOptions, opts *AnalyzeOptions, args []string, stdout, stderr io.Writer) error {
	cfg, err := g.loadConfig(ctx)
	if err != nil {
		return err
	}
	logger := g.logger(cfg)

	files, err := parser.ExpandExports(args)
	if err != nil {
		return fmt.Errorf("expanding exports: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no exports matched: %v", args)
	}

	tr, err := pipeline.ParseTimeRange(opts.From, opts.To)
	if err != nil {
		return err
	}

	webhooks, err := collectWebhooks(cfg, opts)
	if err != nil {
		return err
	}

	formatter, err := output.New(opts.Output, formatOptions(opts.Verbose, opts.Quiet))
	if err != nil {
		return err
	}

	sources := make([]pipeline.Source, len(files))
	for i, f := range files {
		sources[i] = pipeline.FileSource(f)
	}

	report, err := pipeline.Run(ctx, sources, pipeline.Options{
		Config:     cfg,
		ConfigFile: g.ConfigFile,
		TopN:       opts.TopN,
		Gap:        opts.Gap,
		Senders:    opts.Senders,
		TimeRange:  tr,
		Jobs:       opts.Jobs,
		Logger:     logger,
	})

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, webhooks, webhook.NewPayload(report, files, err), logger)

	if err != nil {
		if isNoData(err) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			ExitCode = ExitNoData
			return nil
		}
		return err
	}

	if err := formatter.Format(ctx, report, stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

// isNoData reports whether err means the input held no usable messages.
func isNoData(err error) bool {
	return errors.Is(err, parser.ErrEmptyChat) ||
		errors.Is(err, parser.ErrNoMessagesAfterFiltering) ||
		errors.Is(err, analyzer.ErrNoMessages)
}

// sendWebhooks sends the payload to every webhook whose trigger matches.
func sendWebhooks(ctx context.Context, webhooks []config.WebhookConfig, payload *webhook.Payload, logger *slog.Logger) {
	if len(webhooks) == 0 {
		return
	}
	webhook.NewClient().Dispatch(ctx, webhooks, payload, logger)
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) ([]config.WebhookConfig, error) {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	// Add config file webhooks
	webhooks = append(webhooks, cfg.Webhooks...)

	// Add CLI webhook if specified
	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		switch trigger {
		case "":
			trigger = config.WebhookTriggerOnSuccess
		case config.WebhookTriggerOnSuccess, config.WebhookTriggerAlways, config.WebhookTriggerNever:
		default:
			return nil, fmt.Errorf("invalid --webhook-trigger %q (must be on_success, always, or never)", opts.WebhookTrigger)
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks, nil
}
