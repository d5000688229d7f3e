package parser

import "errors"

var (
	// ErrEmptyChat means no line produced a message.
	ErrEmptyChat = errors.New("no valid messages found")

	// ErrNoMessagesAfterFiltering means messages were parsed but every one of
	// them was a system notice.
	ErrNoMessagesAfterFiltering = errors.New("all messages were system notices")

	// ErrUnrecognizedDialect means a line matched none of the supported
	// dialects. It never aborts a parse; the line becomes a continuation.
	ErrUnrecognizedDialect = errors.New("unrecognized dialect")

	// ErrUnparseableTimestamp means a matched line's date and time could not
	// be parsed with any layout of its dialect.
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
)
