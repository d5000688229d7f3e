// Package cli provides the command-line interface for chatlens.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return commands.ExitFailure
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "chatlens",
		Short: "Statistics for exported chat histories",
		Long: `chatlens parses plain-text chat exports and reports statistics about them.

It reports:
  - When people talk (hour, weekday, month, year)
  - Who talks and how much (messages, words, emoji, media)
  - What they talk about (top words, mentions, hashtags, emoji)
  - How fast they answer and who starts conversations

Exports in several line dialects are recognized automatically. Several
exports of the same chat can be merged into one timeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigFile, "config", "c", "", "Path to configuration file (YAML or TOML)")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&g.LogFormat, "log-format", "", "Log format (text|json)")

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand(g))
	rootCmd.AddCommand(commands.NewParseCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewServeCommand(g))
	rootCmd.AddCommand(commands.NewWatchCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
