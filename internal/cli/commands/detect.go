package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <export>",
		Short: "Detect the line dialect of a chat export",
		Long: `Sample a chat export and report which header dialect it uses.

Every supported dialect is tried against the sampled lines. The report shows
the best match with a confidence score, and with --all every dialect that
recognized at least one line. Day/month order is confirmed when a date
component above 12 shows up in the sample.

Optionally writes a starter config pinned to the detected dialect with
--write-config.

Example:
  chatlens detect chat.txt
  chatlens detect --sample 500 big-group.txt
  chatlens detect -w chatlens.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(commandContext(cmd.Context()), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all matching dialects, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(ctx context.Context, exportFile string, opts *DetectOptions, w io.Writer) error {
	if _, err := os.Stat(exportFile); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("export not found: %s", exportFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, exportFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, exportFile, opts.WriteConfig, w); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(result, exportFile, opts, w)
	case "text", "":
		return outputDetectText(result, exportFile, opts, w)
	default:
		return fmt.Errorf("unknown output format %q (supported: text, json)", opts.Output)
	}
}

func outputDetectText(result *detector.DetectionResult, exportFile string, opts *DetectOptions, w io.Writer) error {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("=== Dialect Detection ===\n\n")
	p("File: %s\n", exportFile)
	p("Lines sampled: %d\n", result.SampledLines)
	p("Header lines: %d\n\n", result.ParsedLines)

	if !result.HasMatch() {
		p("No chat dialect detected.\n\n")
		p("Tip: The file may not be a chat export, or it uses an unsupported layout.\n")
		p("Check that lines start with a date and time followed by a sender name.\n")
		return nil
	}

	best := result.BestMatch()
	p("Detected Dialect: %s\n", best.Dialect.Name)
	p("Confidence: %.1f%% (%d/%d lines matched)\n\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	p("Sample match:\n  %s\n", best.SampleLine)
	p("Parsed as: %s\n\n", best.ParsedTime.Format("2006-01-02 15:04:05"))

	// Ambiguity warning
	if result.AmbiguityNote != "" {
		p("WARNING: %s\n\n", result.AmbiguityNote)
	}

	p("--- Configuration snippet (copy to your config file) ---\n\n")
	p("parser:\n  dialects:\n    - %s\n\n", best.Dialect.Name)

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		p("--- Alternative dialects ---\n")
		for i, m := range result.Matches[1:] {
			p("%d. %s (%.1f%% confidence)\n", i+2, m.Dialect.Name, m.Confidence*100)
			p("   example: %s\n", m.Dialect.Example)
		}
		p("\n")
	}

	return nil
}

// JSONMatch represents a dialect match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Layout     string  `json:"layout"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
	ParsedTime string  `json:"parsed_time"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	ParsedLines   int         `json:"parsed_lines"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(result *detector.DetectionResult, exportFile string, opts *DetectOptions, w io.Writer) error {
	out := JSONOutput{
		File:          exportFile,
		SampledLines:  result.SampledLines,
		ParsedLines:   result.ParsedLines,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Dialect.Name,
			Pattern:    m.Dialect.PatternStr,
			Layout:     m.Dialect.Layout,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			ParsedTime: m.ParsedTime.Format("2006-01-02T15:04:05"),
			Ambiguous:  m.Dialect.Ambiguous,
		})
	}

	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding detection result: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// writeStarterConfig generates a starter config file with the detected dialect.
func writeStarterConfig(result *detector.DetectionResult, exportFile, configPath string, w io.Writer) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	// Need a detected dialect to generate config
	if !result.HasMatch() {
		return errors.New("cannot generate config: no chat dialect detected")
	}

	data, err := config.StarterYAML(result.BestMatch().Dialect.Name, exportFile)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}
