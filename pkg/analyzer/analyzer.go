package analyzer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Defaults for the tunable engines.
const (
	DefaultTopN            = 10
	DefaultConversationGap = time.Hour
)

// ErrNoMessages means every message was excluded by the analyzer filters.
var ErrNoMessages = errors.New("no messages left to analyze")

// Analyzer orchestrates aggregation across multiple engines.
type Analyzer struct {
	engines []Engine

	// Options
	topN      int
	gap       time.Duration
	timeRange *TimeRange
	senders   map[string]bool // nil means all senders
	custom    []Engine
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithTopN sets how many entries ranked lists keep (default 10).
func WithTopN(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.topN = n
		}
	}
}

// WithConversationGap sets the silence after which the next message starts
// a new conversation (default one hour).
func WithConversationGap(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.gap = d
		}
	}
}

// WithTimeRange limits analysis to messages within the given time range.
func WithTimeRange(start, end time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if !start.IsZero() || !end.IsZero() {
			a.timeRange = &TimeRange{Start: start, End: end}
		}
	}
}

// WithSenders limits analysis to messages from the named senders.
func WithSenders(names []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(names) > 0 {
			a.senders = make(map[string]bool, len(names))
			for _, n := range names {
				a.senders[n] = true
			}
		}
	}
}

// WithEngines replaces the default engine set.
func WithEngines(engines ...Engine) AnalyzerOption {
	return func(a *Analyzer) {
		a.custom = engines
	}
}

// New creates an analyzer running every built-in engine unless WithEngines
// says otherwise.
func New(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		topN: DefaultTopN,
		gap:  DefaultConversationGap,
	}
	for _, opt := range opts {
		opt(a)
	}

	if len(a.custom) > 0 {
		a.engines = a.custom
	} else {
		a.engines = DefaultEngines(a.topN, a.gap)
	}
	return a
}

// DefaultEngines returns one instance of every built-in engine.
func DefaultEngines(topN int, gap time.Duration) []Engine {
	return []Engine{
		NewActivityEngine(),
		NewSenderEngine(),
		NewLexicalEngine(topN),
		NewEmojiEngine(topN),
		NewResponseEngine(),
		NewStarterEngine(gap),
	}
}

// Engines returns the names of the engines the analyzer runs.
func (a *Analyzer) Engines() []string {
	names := make([]string, 0, len(a.engines))
	for _, e := range a.engines {
		names = append(names, e.Name())
	}
	return names
}

// Analyze feeds every message through all engines and returns the combined
// statistics. Messages are read, never modified.
func (a *Analyzer) Analyze(ctx context.Context, msgs []parser.Message) (*Stats, error) {
	stats := &Stats{}
	if a.timeRange != nil || a.senders != nil {
		stats.Filter = &FilterSettings{TimeRange: a.timeRange}
		for name := range a.senders {
			stats.Filter.Senders = append(stats.Filter.Senders, name)
		}
		slices.Sort(stats.Filter.Senders)
	}

	// Reset all engines before analysis
	for _, engine := range a.engines {
		engine.Reset()
	}

	seen := make(map[string]bool)
	for i := range msgs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msg := &msgs[i]
		if !a.include(msg) {
			stats.Filter.Skipped++
			continue
		}

		a.count(&stats.Totals, msg, seen)

		for _, engine := range a.engines {
			if err := engine.Process(ctx, msg); err != nil {
				return nil, fmt.Errorf("processing message on line %d with %s engine: %w", msg.Line, engine.Name(), err)
			}
		}
	}

	if stats.Totals.Messages == 0 {
		return nil, ErrNoMessages
	}
	stats.Totals.Senders = len(seen)
	stats.Totals.SpanDays = stats.Totals.Last.Sub(stats.Totals.First).Hours() / 24

	// Finalize all engines
	for _, engine := range a.engines {
		if err := engine.Finalize(ctx, stats); err != nil {
			return nil, fmt.Errorf("finalizing %s engine: %w", engine.Name(), err)
		}
	}

	return stats, nil
}

func (a *Analyzer) include(msg *parser.Message) bool {
	if a.timeRange != nil && !a.timeRange.Contains(msg.Timestamp) {
		return false
	}
	if a.senders != nil && !a.senders[msg.Sender] {
		return false
	}
	return true
}

func (a *Analyzer) count(t *Totals, msg *parser.Message, seen map[string]bool) {
	t.Messages++
	t.Words += msg.Features.WordCount
	t.Chars += msg.Features.CharCount
	t.URLs += msg.Features.URLCount
	t.Emojis += len(msg.Features.Emojis)
	seen[msg.Sender] = true

	if t.First.IsZero() || msg.Timestamp.Before(t.First) {
		t.First = msg.Timestamp
	}
	if t.Last.IsZero() || msg.Timestamp.After(t.Last) {
		t.Last = msg.Timestamp
	}
}
