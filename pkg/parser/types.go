// Package parser turns exported chat-log text into a typed message stream.
//
// A parse runs in one pass: every line is either the start of a new message
// (matched against the supported dialects and normalized to a timestamp) or a
// continuation of the previous message. System notices are filtered out and
// per-message features are derived before the sequence is handed back.
package parser

import "time"

// RawLineMatch is the result of matching one line against a dialect.
// It is produced and consumed while processing a single line.
type RawLineMatch struct {
	Dialect Dialect
	Date    string
	Time    string
	Sender  string
	Message string
}

// Message is a single chat message with its derived features.
type Message struct {
	// Timestamp is the naive local time from the export. No timezone is
	// applied; the value is stored with a UTC location.
	Timestamp time.Time `json:"timestamp"`

	// Sender is the trimmed sender name. Identity is plain string equality.
	Sender string `json:"sender"`

	// Body is the message text, including reattached continuation lines.
	Body string `json:"body"`

	// Dialect is the line shape the header line was recognized as.
	Dialect Dialect `json:"dialect"`

	// Line is the 1-based line number of the header line.
	Line int `json:"line"`

	Features Features `json:"features"`
}

// Features holds the per-message fields computed by Derive.
type Features struct {
	Weekday   string   `json:"weekday"`
	Month     string   `json:"month"`
	Year      int      `json:"year"`
	Date      string   `json:"date"`
	Clock     string   `json:"clock"`
	Hour      int      `json:"hour"`
	CharCount int      `json:"char_count"`
	WordCount int      `json:"word_count"`
	URLCount  int      `json:"url_count"`
	Emojis    []string `json:"emojis"`
}

// Stats counts what happened to the input lines during a parse.
type Stats struct {
	// Lines is the number of input lines, blank ones included.
	Lines int `json:"lines"`

	// Blank is the number of lines skipped because they were empty.
	Blank int `json:"blank"`

	// Records is the number of messages produced before filtering.
	Records int `json:"records"`

	// Continuations is the number of lines appended to a previous message.
	Continuations int `json:"continuations"`

	// Dropped is the number of lines discarded: continuations with no
	// preceding message, bracket-shaped lines that failed to parse, and
	// headers with an empty body.
	Dropped int `json:"dropped"`

	// Filtered is the number of messages removed as system notices.
	Filtered int `json:"filtered"`
}

// ParseResult is the outcome of a successful parse.
type ParseResult struct {
	Messages []Message
	Stats    Stats
}
