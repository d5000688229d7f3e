package analyzer

import (
	"context"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Engine accumulates one family of statistics over a message stream.
// Each aggregation (activity, senders, words, emoji, responses, starters)
// implements this interface.
type Engine interface {
	// Name returns the engine name for reporting and errors.
	Name() string

	// Process handles a single message, updating internal state.
	// Returns nil on success, error on fatal problems.
	Process(ctx context.Context, msg *parser.Message) error

	// Finalize completes aggregation and writes the engine's section of
	// stats. Called after all messages have been processed.
	Finalize(ctx context.Context, stats *Stats) error

	// Reset clears internal state for reuse.
	Reset()
}
