package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/ccollicutt/chatlens/internal/observability"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Exit codes.
const (
	ExitOK      = 0
	ExitNoData  = 1 // input produced no usable messages
	ExitFailure = 2 // configuration or runtime error
)

// GlobalOptions holds the persistent root flags shared by every command.
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

// loadConfig reads --config when given, otherwise the defaults, then
// applies the logging flags on top.
func (g *GlobalOptions) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, g.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	return cfg, nil
}

// logger builds the structured logger for a command. Logs go to stderr.
func (g *GlobalOptions) logger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
}

// formatOptions enables color only when stdout can show it.
func formatOptions(verbose, quiet bool) output.FormatOptions {
	return output.FormatOptions{
		Verbose: verbose,
		Quiet:   quiet,
		Color:   !color.NoColor,
	}
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
