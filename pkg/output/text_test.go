package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
)

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"=== Chat Analysis Report ===",
		"Messages: 4 from 3 senders",
		"Period:   2024-01-15 10:00 to 2024-01-15 13:30 (3.5 hours)",
		"[SENDERS]",
		"[ACTIVITY]",
		"Busiest day: 2024-01-15 (4 messages)",
		"Peak hour:   10:00 (2 messages)",
		"[WORDS]",
		"Mentions: @bob (1)",
		"Hashtags: #food (1)",
		"[EMOJI]",
		"[RESPONSES]",
		"[STARTERS]",
		"2 conversations",
		"[VALIDATION]",
		"warning: chat data spans less than a day",
		"Summary: 4 messages, 3 senders, 2 conversations, 1 warnings",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\n%s", want, output)
		}
	}

	if strings.Contains(output, "\x1b[") {
		t.Error("Output should not contain ANSI escapes when color is off")
	}
	if strings.Contains(output, "Sources:") {
		t.Error("Sources are only shown in verbose mode")
	}
}

func TestTextFormatter_Format_AlignsWideNames(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	// "Alice" is the widest name, so "Zoe" is padded to five columns.
	if !strings.Contains(buf.String(), "  Zo\u00eb    ") {
		t.Errorf("Sender column not padded by display width:\n%s", buf.String())
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "chatlens: 4 messages, 3 senders, 2 conversations, 1 warnings\n"
	if buf.String() != want {
		t.Errorf("Quiet output = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Lines: 4 read, 4 records",
		"Sources: chat.txt",
		"Dialects: bracketed, dash-dmy4",
		"Duration: 12ms",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Verbose output missing %q", want)
		}
	}
}

func TestTextFormatter_Format_EmptySections(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := &Report{
		Stats: &analyzer.Stats{
			Emoji:     &analyzer.EmojiStats{},
			Responses: &analyzer.ResponseStats{},
			Lexical:   &analyzer.LexicalStats{},
		},
	}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"No emoji used", "No replies between different senders", "No words counted"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q", want)
		}
	}
	if strings.Contains(output, "Period:") {
		t.Error("Period line needs a first timestamp")
	}
	if strings.Contains(output, "[VALIDATION]") {
		t.Error("Validation section should be omitted when clean")
	}
}
