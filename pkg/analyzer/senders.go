package analyzer

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// SenderEngine accumulates per-participant totals.
type SenderEngine struct {
	mu       sync.Mutex
	bySender map[string]*SenderSummary
	total    int
}

// NewSenderEngine creates a sender engine.
func NewSenderEngine() *SenderEngine {
	e := &SenderEngine{}
	e.Reset()
	return e
}

// Name returns the engine name.
func (e *SenderEngine) Name() string {
	return "senders"
}

// Process handles a single message.
func (e *SenderEngine) Process(_ context.Context, msg *parser.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.bySender[msg.Sender]
	if !ok {
		s = &SenderSummary{Name: msg.Sender}
		e.bySender[msg.Sender] = s
	}
	s.Messages++
	s.Words += msg.Features.WordCount
	s.Chars += msg.Features.CharCount
	s.URLs += msg.Features.URLCount
	s.Emojis += len(msg.Features.Emojis)
	e.total++
	return nil
}

// Finalize writes the sender ranking.
func (e *SenderEngine) Finalize(_ context.Context, stats *Stats) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ranking := make([]SenderSummary, 0, len(e.bySender))
	for _, s := range e.bySender {
		summary := *s
		summary.AvgWords = SafeDivide(float64(s.Words), float64(s.Messages))
		summary.Share = SafeDivide(float64(s.Messages), float64(e.total))
		ranking = append(ranking, summary)
	}
	slices.SortFunc(ranking, func(a, b SenderSummary) int {
		if a.Messages != b.Messages {
			return cmp.Compare(b.Messages, a.Messages)
		}
		return cmp.Compare(a.Name, b.Name)
	})

	stats.Senders = &SenderStats{Ranking: ranking}
	return nil
}

// Reset clears internal state for reuse.
func (e *SenderEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bySender = make(map[string]*SenderSummary)
	e.total = 0
}
