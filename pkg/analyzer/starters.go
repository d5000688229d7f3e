package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// StarterEngine attributes each conversation to the participant who opened
// it. The first message opens a conversation, and so does any message that
// follows a silence longer than the gap.
type StarterEngine struct {
	gap time.Duration

	mu     sync.Mutex
	events []event
}

// NewStarterEngine creates a conversation-starter engine.
func NewStarterEngine(gap time.Duration) *StarterEngine {
	if gap <= 0 {
		gap = DefaultConversationGap
	}
	return &StarterEngine{gap: gap}
}

// Name returns the engine name.
func (e *StarterEngine) Name() string {
	return "starters"
}

// Process handles a single message.
func (e *StarterEngine) Process(_ context.Context, msg *parser.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, event{at: msg.Timestamp, sender: msg.Sender})
	return nil
}

// Finalize writes the conversation-starter section.
func (e *StarterEngine) Finalize(_ context.Context, stats *Stats) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sorted := chronological(e.events)
	tally := make(map[string]int)
	conversations := 0

	for i, ev := range sorted {
		// Check for gaps between consecutive messages
		if i == 0 || ev.at.Sub(sorted[i-1].at) > e.gap {
			tally[ev.sender]++
			conversations++
		}
	}

	stats.Starters = &StarterStats{
		Conversations: conversations,
		GapMinutes:    e.gap.Minutes(),
		BySender:      rank(tally, 0),
	}
	return nil
}

// Reset clears internal state for reuse.
func (e *StarterEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = nil
}
