package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewJSONFormatter() returned nil")
	}
	if f.Name() != "json" {
		t.Errorf("Name() = %q, want %q", f.Name(), "json")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
	}
	for _, key := range []string{"summary", "stats", "validation", "parse", "metadata"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON missing key %q", key)
		}
	}

	stats := decoded["stats"].(map[string]any)
	senders := stats["senders"].(map[string]any)["ranking"].([]any)
	if first := senders[0].(map[string]any)["name"]; first != "Alice" {
		t.Errorf("Top sender = %v, want Alice", first)
	}

	if !strings.Contains(buf.String(), "\n  \"summary\"") {
		t.Error("Output should be indented with two spaces")
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var summary Summary
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("Output is not a summary: %v", err)
	}
	if summary.Messages != 4 || summary.Senders != 3 {
		t.Errorf("Summary = %+v", summary)
	}
	if strings.Contains(buf.String(), "stats") {
		t.Error("Quiet output should only contain the summary")
	}
}

func TestWriteMessages(t *testing.T) {
	msgs := []parser.Message{
		parser.Derive(parser.Message{
			Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			Sender:    "Alice",
			Body:      "hi \U0001F600",
			Dialect:   parser.DialectISO,
			Line:      1,
		}),
		parser.Derive(parser.Message{
			Timestamp: time.Date(2024, 1, 15, 10, 1, 0, 0, time.UTC),
			Sender:    "Bob",
			Body:      "line one\nline two",
			Dialect:   parser.DialectISO,
			Line:      2,
		}),
	}

	var buf bytes.Buffer
	if err := WriteMessages(context.Background(), msgs, &buf); err != nil {
		t.Fatalf("WriteMessages() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Got %d lines, want 2:\n%s", len(lines), buf.String())
	}

	var got parser.Message
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("Line is not a message: %v", err)
	}
	if got.Sender != "Bob" || got.Body != "line one\nline two" {
		t.Errorf("Decoded message = %+v", got)
	}
	if got.Dialect != parser.DialectISO {
		t.Errorf("Dialect = %v, want iso", got.Dialect)
	}
	if !strings.Contains(lines[0], `"dialect":"iso"`) {
		t.Errorf("Dialect should be encoded by name: %s", lines[0])
	}
}

func TestWriteMessages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := WriteMessages(ctx, []parser.Message{{Sender: "A", Body: "b"}}, &buf)
	if err == nil {
		t.Error("Expected error for cancelled context")
	}
}
