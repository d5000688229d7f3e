// Package output provides formatting and output generation for chat
// analysis reports.
package output

import (
	"time"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides headline numbers.
	Summary Summary `json:"summary"`

	// Stats contains every engine's section.
	Stats *analyzer.Stats `json:"stats"`

	// Validation lists data quality issues and warnings.
	Validation analyzer.Validation `json:"validation"`

	// Parse counts what happened to the input lines, summed over sources.
	Parse parser.Stats `json:"parse"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides headline numbers.
type Summary struct {
	Messages      int       `json:"messages"`
	Senders       int       `json:"senders"`
	Conversations int       `json:"conversations"`
	First         time.Time `json:"first"`
	Last          time.Time `json:"last"`
	SpanDays      float64   `json:"span_days"`
	Warnings      int       `json:"warnings"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the exports that were analyzed.
	Sources []string `json:"sources"`

	// Dialects lists the dialects seen across all messages, in priority order.
	Dialects []string `json:"dialects"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// DurationMS is how long parsing and analysis took.
	DurationMS int64 `json:"duration_ms"`
}

// NewReport assembles a report from analyzer output. The summary is derived
// from stats.
func NewReport(stats *analyzer.Stats, validation analyzer.Validation, parse parser.Stats, meta Metadata) *Report {
	report := &Report{
		Stats:      stats,
		Validation: validation,
		Parse:      parse,
		Metadata:   meta,
		Summary: Summary{
			Warnings: len(validation.Warnings),
		},
	}

	if stats != nil {
		report.Summary.Messages = stats.Totals.Messages
		report.Summary.Senders = stats.Totals.Senders
		report.Summary.First = stats.Totals.First
		report.Summary.Last = stats.Totals.Last
		report.Summary.SpanDays = stats.Totals.SpanDays
		if stats.Starters != nil {
			report.Summary.Conversations = stats.Starters.Conversations
		}
	}

	return report
}

// DialectsOf lists the distinct dialects of msgs in matching priority order.
func DialectsOf(msgs []parser.Message) []string {
	seen := make(map[parser.Dialect]bool)
	for _, m := range msgs {
		seen[m.Dialect] = true
	}
	names := []string{}
	for _, spec := range parser.Dialects() {
		if seen[spec.Dialect] {
			names = append(names, spec.Name)
		}
	}
	return names
}

// HasWarnings returns true if validation produced warnings.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// AddParseStats accumulates the counters of one more source.
func AddParseStats(total *parser.Stats, s parser.Stats) {
	total.Lines += s.Lines
	total.Blank += s.Blank
	total.Records += s.Records
	total.Continuations += s.Continuations
	total.Dropped += s.Dropped
	total.Filtered += s.Filtered
}
