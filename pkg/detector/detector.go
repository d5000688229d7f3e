// Package detector identifies which chat export dialect a file is written in.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DetectionResult holds the result of analyzing an export.
type DetectionResult struct {
	Matches       []DialectMatch // Dialects that matched, sorted by confidence descending
	SampledLines  int            // Number of non-blank lines sampled
	ParsedLines   int            // Number of header lines recognized by the best match
	AmbiguityNote string         // Warning about day/month ordering if applicable
}

// DialectMatch represents a dialect that matched with its confidence score.
type DialectMatch struct {
	Dialect    *parser.DialectSpec
	Confidence float64   // 0.0 to 1.0 (share of sampled lines recognized)
	MatchCount int       // Number of lines that matched and normalized
	SampleLine string    // First line that matched
	ParsedTime time.Time // Timestamp of the sample line
	priority   int
	order      dateOrder
}

// DefaultSampleSize is how many non-blank lines are sampled by default.
const DefaultSampleSize = 100

// Detector samples exports to identify their dialect.
type Detector struct {
	dialects   []*parser.DialectSpec
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of non-blank lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithDialects restricts detection to the given dialects.
func WithDialects(dialects ...*parser.DialectSpec) Option {
	return func(d *Detector) {
		if len(dialects) > 0 {
			d.dialects = dialects
		}
	}
}

// New creates a new Detector over every supported dialect.
func New(opts ...Option) *Detector {
	d := &Detector{
		dialects:   parser.Dialects(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples an export file and returns detected dialects.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of export lines. Unlike a parse, every
// dialect is tried against every line, so overlapping dialects are all
// reported.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	var sampled []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sampled = append(sampled, line)
		if len(sampled) == d.sampleSize {
			break
		}
	}
	result.SampledLines = len(sampled)
	if len(sampled) == 0 {
		return result
	}

	for priority, spec := range d.dialects {
		matcher := parser.NewMatcher(spec)
		match := DialectMatch{Dialect: spec, priority: priority}

		for _, line := range sampled {
			raw, ok := matcher.Match(line)
			if !ok {
				continue
			}
			ts, err := parser.Normalize(raw.Dialect, raw.Date, raw.Time)
			if err != nil {
				continue
			}
			if match.MatchCount == 0 {
				match.SampleLine = strings.TrimSpace(line)
				match.ParsedTime = ts
			}
			match.MatchCount++
			match.order = match.order.observe(spec, raw.Date)
		}

		if match.MatchCount > 0 {
			match.Confidence = float64(match.MatchCount) / float64(len(sampled))
			result.Matches = append(result.Matches, match)
		}
	}

	// Sort by confidence descending, then by matching priority
	sort.SliceStable(result.Matches, func(i, j int) bool {
		if result.Matches[i].Confidence != result.Matches[j].Confidence {
			return result.Matches[i].Confidence > result.Matches[j].Confidence
		}
		return result.Matches[i].priority < result.Matches[j].priority
	})

	if best := result.BestMatch(); best != nil {
		result.ParsedLines = best.MatchCount
		result.AmbiguityNote = ambiguityNote(best)
	}

	return result
}

func ambiguityNote(m *DialectMatch) string {
	if !m.Dialect.Ambiguous || m.order.confirmed() {
		return ""
	}
	return fmt.Sprintf("Dialect %s reads dates as %s, but no sampled date has a component above 12, "+
		"so the day/month order could not be confirmed. Check a few timestamps against the chat.",
		m.Dialect.Name, assumedOrder(m.Dialect))
}

// sampleFile reads up to sampleSize non-blank lines from a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() && len(lines) < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := parser.Decode(scanner.Bytes())
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *DialectMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one dialect matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
