package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions

	heading func(a ...any) string
	warn    func(a ...any) string
	dim     func(a ...any) string
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	heading := color.New(color.Bold, color.FgCyan)
	warn := color.New(color.FgYellow)
	dim := color.New(color.Faint)
	if !opts.Color {
		heading.DisableColor()
		warn.DisableColor()
		dim.DisableColor()
	}
	return &TextFormatter{
		opts:    opts,
		heading: heading.SprintFunc(),
		warn:    warn.SprintFunc(),
		dim:     dim.SprintFunc(),
	}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "chatlens: %s messages, %d senders, %d conversations, %d warnings\n",
		analyzer.FormatNumber(report.Summary.Messages),
		report.Summary.Senders,
		report.Summary.Conversations,
		report.Summary.Warnings)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	// Header
	fmt.Fprintln(w, f.heading("=== Chat Analysis Report ==="))
	fmt.Fprintln(w)

	s := report.Summary
	fmt.Fprintf(w, "Messages: %s from %d senders\n", analyzer.FormatNumber(s.Messages), s.Senders)
	if !s.First.IsZero() {
		fmt.Fprintf(w, "Period:   %s to %s (%s)\n",
			s.First.Format("2006-01-02 15:04"),
			s.Last.Format("2006-01-02 15:04"),
			analyzer.FormatDuration(s.Last.Sub(s.First).Seconds()))
	}
	fmt.Fprintln(w)

	if st := report.Stats; st != nil {
		if st.Senders != nil {
			f.formatSenders(st.Senders, w)
		}
		if st.Activity != nil {
			f.formatActivity(st.Activity, w)
		}
		if st.Lexical != nil {
			f.formatLexical(st.Lexical, w)
		}
		if st.Emoji != nil {
			f.formatEmoji(st.Emoji, w)
		}
		if st.Responses != nil {
			f.formatResponses(st.Responses, w)
		}
		if st.Starters != nil {
			f.formatStarters(st.Starters, w)
		}
	}

	f.formatValidation(&report.Validation, w)

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %s messages, %d senders, %d conversations, %d warnings\n",
		analyzer.FormatNumber(s.Messages), s.Senders, s.Conversations, s.Warnings)

	if f.opts.Verbose {
		p := report.Parse
		fmt.Fprintf(w, "Lines: %d read, %d records, %d continuations, %d dropped, %d notices filtered\n",
			p.Lines, p.Records, p.Continuations, p.Dropped, p.Filtered)
		if len(report.Metadata.Sources) > 0 {
			fmt.Fprintf(w, "Sources: %s\n", strings.Join(report.Metadata.Sources, ", "))
		}
		if len(report.Metadata.Dialects) > 0 {
			fmt.Fprintf(w, "Dialects: %s\n", strings.Join(report.Metadata.Dialects, ", "))
		}
		fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Metadata.DurationMS)*time.Millisecond)
	}

	return nil
}

func (f *TextFormatter) section(name string, w io.Writer) {
	fmt.Fprintln(w, f.heading("["+name+"]"))
}

func (f *TextFormatter) formatSenders(st *analyzer.SenderStats, w io.Writer) {
	f.section("SENDERS", w)
	width := 0
	for _, s := range st.Ranking {
		width = max(width, runewidth.StringWidth(s.Name))
	}
	for _, s := range st.Ranking {
		fmt.Fprintf(w, "  %s  %6s  %5.1f%%  avg %.1f words  %d emoji  %d links\n",
			runewidth.FillRight(s.Name, width),
			analyzer.FormatNumber(s.Messages),
			s.Share*100, s.AvgWords, s.Emojis, s.URLs)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatActivity(a *analyzer.ActivityStats, w io.Writer) {
	f.section("ACTIVITY", w)
	fmt.Fprintf(w, "  Busiest day: %s (%d messages)\n", a.BusiestDay.Key, a.BusiestDay.Count)
	fmt.Fprintf(w, "  Peak hour:   %02d:00 (%d messages)\n", a.PeakHour, a.ByHour[a.PeakHour])
	fmt.Fprintf(w, "  Active days: %d\n", a.ActiveDays)
	fmt.Fprintf(w, "  %s\n", joinCounts(a.ByPeriod, " | "))
	fmt.Fprintf(w, "  %s\n", joinCounts(a.ByWeekday, " | "))
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatLexical(l *analyzer.LexicalStats, w io.Writer) {
	f.section("WORDS", w)
	if len(l.TopWords) == 0 {
		fmt.Fprintln(w, "  No words counted")
	} else {
		fmt.Fprintf(w, "  %s\n", joinCounts(l.TopWords, ", "))
	}
	if len(l.TopMentions) > 0 {
		fmt.Fprintf(w, "  Mentions: %s\n", joinPrefixed("@", l.TopMentions))
	}
	if len(l.TopHashtags) > 0 {
		fmt.Fprintf(w, "  Hashtags: %s\n", joinPrefixed("#", l.TopHashtags))
	}
	fmt.Fprintf(w, "  %s\n", f.dim(fmt.Sprintf("%d distinct stems", l.UniqueWords)))
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatEmoji(e *analyzer.EmojiStats, w io.Writer) {
	f.section("EMOJI", w)
	if e.Total == 0 {
		fmt.Fprintln(w, "  No emoji used")
		fmt.Fprintln(w)
		return
	}
	width := 0
	for _, c := range e.Top {
		width = max(width, runewidth.StringWidth(c.Key))
	}
	for _, c := range e.Top {
		fmt.Fprintf(w, "  %s  %d\n", runewidth.FillRight(c.Key, width), c.Count)
	}
	fmt.Fprintf(w, "  %s\n", f.dim(fmt.Sprintf("%d total, %d unique", e.Total, e.Unique)))
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatResponses(r *analyzer.ResponseStats, w io.Writer) {
	f.section("RESPONSES", w)
	if r.Count == 0 {
		fmt.Fprintln(w, "  No replies between different senders")
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "  %d replies, average %s, median %s (fastest %s, slowest %s)\n",
		r.Count,
		minutes(r.AvgMinutes), minutes(r.MedianMinutes),
		minutes(r.MinMinutes), minutes(r.MaxMinutes))

	width := 0
	for _, s := range r.ByResponder {
		width = max(width, runewidth.StringWidth(s.Name))
	}
	for _, s := range r.ByResponder {
		fmt.Fprintf(w, "  %s  %4d  avg %s\n", runewidth.FillRight(s.Name, width), s.Count, minutes(s.AvgMinutes))
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatStarters(s *analyzer.StarterStats, w io.Writer) {
	f.section("STARTERS", w)
	fmt.Fprintf(w, "  %d conversations (new after %s of silence)\n",
		s.Conversations, minutes(s.GapMinutes))
	width := 0
	for _, c := range s.BySender {
		width = max(width, runewidth.StringWidth(c.Key))
	}
	for _, c := range s.BySender {
		fmt.Fprintf(w, "  %s  %d\n", runewidth.FillRight(c.Key, width), c.Count)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatValidation(v *analyzer.Validation, w io.Writer) {
	if len(v.Issues) == 0 && len(v.Warnings) == 0 {
		return
	}
	f.section("VALIDATION", w)
	for _, issue := range v.Issues {
		fmt.Fprintf(w, "  %s %s\n", f.warn("issue:"), issue)
	}
	for _, warning := range v.Warnings {
		fmt.Fprintf(w, "  %s %s\n", f.warn("warning:"), warning)
	}
	fmt.Fprintln(w)
}

func minutes(m float64) string {
	return analyzer.FormatDuration(m * 60)
}

func joinCounts(counts []analyzer.Count, sep string) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %d", c.Key, c.Count))
	}
	return strings.Join(parts, sep)
}

func joinPrefixed(prefix string, counts []analyzer.Count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s%s (%d)", prefix, c.Key, c.Count))
	}
	return strings.Join(parts, ", ")
}
