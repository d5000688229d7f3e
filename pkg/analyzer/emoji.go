package analyzer

import (
	"context"
	"sync"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// EmojiEngine counts emoji graphemes.
type EmojiEngine struct {
	topN int

	mu    sync.Mutex
	tally map[string]int
	total int
}

// NewEmojiEngine creates an emoji engine keeping the topN most used emoji.
func NewEmojiEngine(topN int) *EmojiEngine {
	e := &EmojiEngine{topN: topN}
	e.Reset()
	return e
}

// Name returns the engine name.
func (e *EmojiEngine) Name() string {
	return "emoji"
}

// Process handles a single message.
func (e *EmojiEngine) Process(_ context.Context, msg *parser.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, em := range msg.Features.Emojis {
		e.tally[em]++
		e.total++
	}
	return nil
}

// Finalize writes the emoji section.
func (e *EmojiEngine) Finalize(_ context.Context, stats *Stats) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats.Emoji = &EmojiStats{
		Top:    rank(e.tally, e.topN),
		Total:  e.total,
		Unique: len(e.tally),
	}
	return nil
}

// Reset clears internal state for reuse.
func (e *EmojiEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tally = make(map[string]int)
	e.total = 0
}
