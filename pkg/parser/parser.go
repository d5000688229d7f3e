package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Option configures a parse.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	matcher *Matcher
	notices []string
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:  slog.New(slog.DiscardHandler),
		matcher: defaultMatcher,
		notices: DefaultNotices,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sends debug events about demoted and dropped lines to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMatcher replaces the default all-dialect matcher.
func WithMatcher(m *Matcher) Option {
	return func(o *options) {
		if m != nil {
			o.matcher = m
		}
	}
}

// WithNotices adds notice phrases on top of DefaultNotices. Repeated calls
// accumulate.
func WithNotices(extra ...string) Option {
	return func(o *options) {
		merged := make([]string, 0, len(o.notices)+len(extra))
		merged = append(merged, o.notices...)
		o.notices = append(merged, extra...)
	}
}

// Parse runs the full pipeline over an export: reassembly, notice filtering
// and feature derivation. It fails with ErrEmptyChat when nothing parsed and
// ErrNoMessagesAfterFiltering when only notices did.
func Parse(text string, opts ...Option) (*ParseResult, error) {
	o := newOptions(opts)

	msgs, stats, err := reassemble(strings.Split(text, "\n"), o)
	if err != nil {
		return nil, err
	}

	kept, err := FilterNotices(msgs, o.notices)
	if err != nil {
		return nil, err
	}
	stats.Filtered = len(msgs) - len(kept)

	o.logger.Debug("parsed export",
		slog.Int("lines", stats.Lines),
		slog.Int("records", stats.Records),
		slog.Int("filtered", stats.Filtered),
		slog.Int("continuations", stats.Continuations),
		slog.Int("dropped", stats.Dropped))

	return &ParseResult{
		Messages: DeriveAll(kept),
		Stats:    stats,
	}, nil
}

// ParseReader reads and decodes an export before parsing it.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(Decode(data), opts...)
}

// ParseFile parses the export at path.
func ParseFile(ctx context.Context, path string, opts ...Option) (*ParseResult, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	result, err := ParseReader(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return result, nil
}
