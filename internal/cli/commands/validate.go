package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a chatlens configuration file without running analysis.

Checks:
  - YAML or TOML syntax
  - Dialect names
  - Analysis, server, store and logging settings
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(commandContext(cmd.Context()), args[0], cmd.OutOrStdout())
		},
	}
}

func runValidate(ctx context.Context, configPath string, w io.Writer) error {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	dialects := "all (auto)"
	if len(cfg.Parser.Dialects) > 0 {
		dialects = strings.Join(cfg.Parser.Dialects, ", ")
	}

	p("\nConfiguration valid!\n")
	p("  Dialects:         %s\n", dialects)
	p("  Extra notices:    %d\n", len(cfg.Parser.Notices))
	p("  Top N:            %d\n", cfg.Analysis.TopN)
	p("  Conversation gap: %s\n", cfg.Analysis.ConversationGap)
	if len(cfg.Analysis.Senders) > 0 {
		p("  Senders:          %s\n", strings.Join(cfg.Analysis.Senders, ", "))
	}
	p("  Server:           %s (max upload %d bytes)\n", cfg.Server.Addr, cfg.Server.MaxUploadBytes)

	switch cfg.Store.Backend {
	case config.StoreSQLite:
		p("  Store:            sqlite at %s\n", cfg.Store.Path)
	default:
		p("  Store:            memory (%d results)\n", cfg.Store.Capacity)
	}
	p("  Logging:          %s, %s\n", cfg.Logging.Level, cfg.Logging.Format)

	if len(cfg.Webhooks) > 0 {
		p("\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			p("  %d. [%s] %s (timeout %s)\n", i+1, wh.Trigger, name, wh.Timeout)
		}
	}

	return nil
}
