package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatlens/internal/pipeline"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <export>",
		Short: "Diagnose why an export does not parse",
		Long: `Diagnose common problems with a chat export.

This command checks an export and the active configuration:
- Export file existence and size
- Text encoding
- Line dialect detection
- Parse results (records, continuations, dropped lines, notices)
- Configured dialects and webhooks (with --config)

Example:
  chatlens diagnose chat.txt
  chatlens --config chatlens.yaml diagnose -v chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(commandContext(cmd.Context()), g, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, g *GlobalOptions, exportFile string, opts *DiagnoseOptions, w io.Writer) error {
	results := []DiagnosticResult{}

	// 1. Check export existence
	data, result := checkExportFile(exportFile)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(results, opts, w)
		return nil
	}

	// 2. Encoding
	results = append(results, checkEncoding(data))

	// 3. Config file, when given
	cfg := config.DefaultConfig()
	if g.ConfigFile != "" {
		loaded, result := checkConfigParseable(ctx, g.ConfigFile)
		results = append(results, result)
		if result.Status == "error" {
			printDiagnostics(results, opts, w)
			return nil
		}
		cfg = loaded
	}

	// 4. Dialect detection
	lines := strings.Split(parser.Decode(data), "\n")
	detected := detector.New().DetectFromLines(lines)
	results = append(results, checkDialect(detected, cfg, opts)...)

	// 5. Parse with the active configuration
	results = append(results, checkParse(data, cfg, opts)...)

	// 6. Webhooks
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(results, opts, w)
	return nil
}

func checkExportFile(path string) ([]byte, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Export File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Export not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return nil, result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access export: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return nil, result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Pass one export file; 'chatlens analyze' accepts directories"}
		return nil, result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Export file is empty"
		result.Suggests = []string{"Re-export the chat from the messaging app"}
		return nil, result
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read export: %v", err)
		return nil, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return data, result
}

func checkEncoding(data []byte) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Encoding",
	}

	hasBOM := bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	switch {
	case utf8.Valid(data) && hasBOM:
		result.Status = "ok"
		result.Message = "UTF-8 with byte order mark"
	case utf8.Valid(data):
		result.Status = "ok"
		result.Message = "UTF-8"
	default:
		result.Status = "warning"
		result.Message = "Not valid UTF-8, decoding as Windows-1252"
		result.Suggests = []string{
			"Names and emoji may look wrong; export again with UTF-8 if the app allows it",
		}
	}
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		result.Suggests = append(result.Suggests,
			"Use 'chatlens detect <export> --write-config chatlens.yaml' to generate a starter config")
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file loaded successfully"
	result.Details = []string{
		fmt.Sprintf("Dialects: %s", dialectList(cfg.Parser.Dialects)),
		fmt.Sprintf("Extra notices: %d", len(cfg.Parser.Notices)),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func dialectList(names []string) string {
	if len(names) == 0 {
		return "all"
	}
	return strings.Join(names, ", ")
}

func checkDialect(detected *detector.DetectionResult, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	result := DiagnosticResult{
		Check: "Dialect",
	}

	best := detected.BestMatch()
	if best == nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("No supported dialect recognized in %d sampled lines", detected.SampledLines)
		result.Suggests = []string{
			"Check that the file is a chat export and not a zip archive or media file",
			"Run 'chatlens detect <export>' to see the supported line shapes",
		}
		return append(results, result)
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%s (%.0f%% of sampled lines)", best.Dialect.Name, best.Confidence*100)
	result.Details = []string{
		fmt.Sprintf("Sample: %s", truncate(best.SampleLine, 80)),
		fmt.Sprintf("Parsed: %s", best.ParsedTime.Format(time.DateTime)),
	}
	if opts.Verbose && len(detected.Matches) > 1 {
		for _, m := range detected.Matches[1:] {
			result.Details = append(result.Details,
				fmt.Sprintf("Also matched: %s (%.0f%%)", m.Dialect.Name, m.Confidence*100))
		}
	}
	if detected.AmbiguityNote != "" {
		result.Status = "warning"
		result.Details = append(result.Details, detected.AmbiguityNote)
		result.Suggests = append(result.Suggests, "Day/month order is assumed from the dialect, not confirmed by the data")
	}
	results = append(results, result)

	if len(cfg.Parser.Dialects) > 0 && !slices.Contains(cfg.Parser.Dialects, best.Dialect.Name) {
		results = append(results, DiagnosticResult{
			Check:   "Configured Dialects",
			Status:  "error",
			Message: fmt.Sprintf("Detected dialect %q is not in parser.dialects", best.Dialect.Name),
			Details: []string{fmt.Sprintf("Configured: %s", dialectList(cfg.Parser.Dialects))},
			Suggests: []string{
				fmt.Sprintf("Add %q to parser.dialects or remove the restriction", best.Dialect.Name),
			},
		})
	}

	return results
}

func checkParse(data []byte, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	result := DiagnosticResult{
		Check: "Parse",
	}

	popts, err := pipeline.ParserOptions(cfg, nil)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return []DiagnosticResult{result}
	}

	parsed, err := parser.Parse(parser.Decode(data), popts...)
	switch {
	case errors.Is(err, parser.ErrEmptyChat):
		result.Status = "error"
		result.Message = "No message headers recognized"
		result.Suggests = []string{"Run 'chatlens detect <export>' to check the dialect"}
		return []DiagnosticResult{result}
	case errors.Is(err, parser.ErrNoMessagesAfterFiltering):
		result.Status = "error"
		result.Message = "Every message was a system notice"
		result.Suggests = []string{"Check parser.notices for phrases that match ordinary messages"}
		return []DiagnosticResult{result}
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Parse failed: %v", err)
		return []DiagnosticResult{result}
	}

	stats := parsed.Stats
	result.Status = "ok"
	result.Message = fmt.Sprintf("%d messages kept", len(parsed.Messages))
	result.Details = []string{
		fmt.Sprintf("Lines: %d (%d blank)", stats.Lines, stats.Blank),
		fmt.Sprintf("Records: %d", stats.Records),
		fmt.Sprintf("Continuations: %d", stats.Continuations),
		fmt.Sprintf("Notices filtered: %d", stats.Filtered),
		fmt.Sprintf("Dropped lines: %d", stats.Dropped),
	}
	if stats.Dropped > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d messages kept, %d lines dropped", len(parsed.Messages), stats.Dropped)
		result.Suggests = []string{"Run with --log-level debug to see each dropped line"}
	}

	results := []DiagnosticResult{result}
	if opts.Verbose {
		results = append(results, DiagnosticResult{
			Check:   "Time Span",
			Status:  "ok",
			Message: fmt.Sprintf("%s to %s", parsed.Messages[0].Timestamp.Format(time.DateTime), parsed.Messages[len(parsed.Messages)-1].Timestamp.Format(time.DateTime)),
		})
	}
	return results
}

func printDiagnostics(results []DiagnosticResult, opts *DiagnoseOptions, w io.Writer) {
	_, _ = fmt.Fprintln(w, "=== chatlens Export Diagnostics ===")
	_, _ = fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		_, _ = fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		_, _ = fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				_, _ = fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			_, _ = fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		_, _ = fmt.Fprintln(w)
	}

	// Summary
	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		_, _ = fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		_, _ = fmt.Fprintln(w, "\nExport is usable but has warnings.")
	} else {
		_, _ = fmt.Fprintln(w, "\nExport looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}
		warnings := []string{}

		u, err := url.Parse(wh.URL)
		if err != nil {
			issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
		}

		// Unset env vars expand to an empty string
		if wh.Token == "" {
			warnings = append(warnings, "No token configured; requests are sent without Authorization")
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 && opts.Verbose {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
			}
		}

		results = append(results, result)

		if opts.Verbose && len(issues) == 0 {
			conn := checkWebhookConnectivity(wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// A HEAD request is enough to tell if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
