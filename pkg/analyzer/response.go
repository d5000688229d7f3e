package analyzer

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// ResponseEngine measures how long participants take to answer each other.
// After sorting by time, every message whose predecessor came from a
// different sender counts as a reply.
type ResponseEngine struct {
	mu     sync.Mutex
	events []event
}

// NewResponseEngine creates a response-time engine.
func NewResponseEngine() *ResponseEngine {
	return &ResponseEngine{}
}

// Name returns the engine name.
func (e *ResponseEngine) Name() string {
	return "responses"
}

// Process handles a single message.
func (e *ResponseEngine) Process(_ context.Context, msg *parser.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, event{at: msg.Timestamp, sender: msg.Sender})
	return nil
}

// Finalize writes the response-time section.
func (e *ResponseEngine) Finalize(_ context.Context, stats *Stats) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sorted := chronological(e.events)

	var gaps []float64
	type responder struct {
		count int
		total float64
	}
	byName := make(map[string]*responder)

	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if prev.sender == curr.sender {
			continue
		}
		minutes := curr.at.Sub(prev.at).Minutes()
		gaps = append(gaps, minutes)

		r, ok := byName[curr.sender]
		if !ok {
			r = &responder{}
			byName[curr.sender] = r
		}
		r.count++
		r.total += minutes
	}

	result := &ResponseStats{ByResponder: []ResponderSummary{}}
	if len(gaps) > 0 {
		sortedGaps := slices.Clone(gaps)
		slices.Sort(sortedGaps)

		sum := 0.0
		for _, g := range gaps {
			sum += g
		}
		result.Count = len(gaps)
		result.AvgMinutes = sum / float64(len(gaps))
		result.MedianMinutes = sortedGaps[len(sortedGaps)/2]
		result.MinMinutes = sortedGaps[0]
		result.MaxMinutes = sortedGaps[len(sortedGaps)-1]
	}

	for name, r := range byName {
		result.ByResponder = append(result.ByResponder, ResponderSummary{
			Name:       name,
			Count:      r.count,
			AvgMinutes: SafeDivide(r.total, float64(r.count)),
		})
	}
	slices.SortFunc(result.ByResponder, func(a, b ResponderSummary) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Name, b.Name)
	})

	stats.Responses = result
	return nil
}

// Reset clears internal state for reuse.
func (e *ResponseEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = nil
}
