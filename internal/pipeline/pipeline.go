// Package pipeline runs exports through parsing, merging and analysis and
// assembles the resulting report. Both the CLI and the HTTP server use it.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/chatlens/internal/observability"
	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Source is one export to parse.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource reads the export at path.
func FileSource(path string) Source {
	return Source{
		Name: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path) // #nosec G304 -- user-provided paths are expected
		},
	}
}

// BytesSource reads an export already held in memory.
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Options tunes a pipeline run. Zero values fall back to Config.
type Options struct {
	Config     *config.Config
	ConfigFile string

	TopN      int
	Gap       time.Duration
	Senders   []string
	TimeRange analyzer.TimeRange

	// Jobs bounds how many sources are parsed at once.
	Jobs int

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

func (o *Options) defaults() {
	if o.Config == nil {
		o.Config = config.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.TopN <= 0 {
		o.TopN = o.Config.Analysis.TopN
	}
	if o.Gap <= 0 {
		o.Gap = o.Config.Analysis.ConversationGap
	}
	if len(o.Senders) == 0 {
		o.Senders = o.Config.Analysis.Senders
	}
}

// ParserOptions builds the parser options implied by cfg.
func ParserOptions(cfg *config.Config, logger *slog.Logger) ([]parser.Option, error) {
	opts := []parser.Option{
		parser.WithLogger(logger),
		parser.WithNotices(cfg.Parser.Notices...),
	}
	if len(cfg.Parser.Dialects) > 0 {
		m, err := parser.OnlyDialects(cfg.Parser.Dialects)
		if err != nil {
			return nil, fmt.Errorf("selecting dialects: %w", err)
		}
		opts = append(opts, parser.WithMatcher(m))
	}
	return opts, nil
}

// Parse parses every source concurrently and merges the messages into one
// timeline. Stats are summed over sources. The first failing source cancels
// the rest.
func Parse(ctx context.Context, sources []Source, opts Options) ([]parser.Message, parser.Stats, error) {
	opts.defaults()
	var total parser.Stats

	popts, err := ParserOptions(opts.Config, opts.Logger)
	if err != nil {
		return nil, total, err
	}

	results := make([]*parser.ParseResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)

	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			res, err := parseSource(gctx, src, popts)

			messages := 0
			if res != nil {
				messages = len(res.Messages)
			}
			opts.Metrics.RecordParse(time.Since(start), messages, err)
			if err != nil {
				return err
			}

			opts.Logger.Debug("parsed source",
				slog.String("source", src.Name),
				slog.Int("messages", messages),
				slog.Int("filtered", res.Stats.Filtered))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, total, err
	}

	seqs := make([][]parser.Message, len(results))
	for i, res := range results {
		seqs[i] = res.Messages
		output.AddParseStats(&total, res.Stats)
	}

	if len(seqs) == 1 {
		return seqs[0], total, nil
	}
	return parser.Merge(seqs...), total, nil
}

func parseSource(ctx context.Context, src Source, popts []parser.Option) (*parser.ParseResult, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", src.Name, err)
	}
	defer rc.Close()

	res, err := parser.ParseReader(ctx, rc, popts...)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Name, err)
	}
	return res, nil
}

// Analyze aggregates msgs and assembles the report.
func Analyze(ctx context.Context, msgs []parser.Message, parse parser.Stats, names []string, opts Options) (*output.Report, error) {
	opts.defaults()
	start := time.Now()

	a := analyzer.New(
		analyzer.WithTopN(opts.TopN),
		analyzer.WithConversationGap(opts.Gap),
		analyzer.WithSenders(opts.Senders),
		analyzer.WithTimeRange(opts.TimeRange.Start, opts.TimeRange.End),
	)

	stats, err := a.Analyze(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	return output.NewReport(stats, analyzer.Validate(msgs), parse, output.Metadata{
		ConfigFile: opts.ConfigFile,
		Sources:    names,
		Dialects:   output.DialectsOf(msgs),
		AnalyzedAt: start,
		DurationMS: time.Since(start).Milliseconds(),
	}), nil
}

// Run parses sources and analyzes the merged timeline.
func Run(ctx context.Context, sources []Source, opts Options) (*output.Report, error) {
	start := time.Now()

	msgs, parse, err := Parse(ctx, sources, opts)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}

	report, err := Analyze(ctx, msgs, parse, names, opts)
	if err != nil {
		return nil, err
	}
	report.Metadata.AnalyzedAt = start
	report.Metadata.DurationMS = time.Since(start).Milliseconds()
	return report, nil
}

// ParseTimeRange parses optional from and to bounds. Each is a date
// (2006-01-02) or an RFC 3339 timestamp; empty means unbounded.
func ParseTimeRange(from, to string) (analyzer.TimeRange, error) {
	var tr analyzer.TimeRange
	var err error
	if tr.Start, err = parseBound(from); err != nil {
		return tr, fmt.Errorf("invalid from %q: %w", from, err)
	}
	if tr.End, err = parseBound(to); err != nil {
		return tr, fmt.Errorf("invalid to %q: %w", to, err)
	}
	if !tr.Start.IsZero() && !tr.End.IsZero() && tr.End.Before(tr.Start) {
		return tr, fmt.Errorf("invalid range: to %q is before from %q", to, from)
	}
	return tr, nil
}

func parseBound(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
