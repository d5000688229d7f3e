package analyzer

import (
	"slices"
	"time"
)

// event is the part of a message the timing engines need.
type event struct {
	at     time.Time
	sender string
}

// chronological returns a copy of events stably sorted by time, so messages
// sharing a timestamp keep file order.
func chronological(events []event) []event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b event) int {
		return a.at.Compare(b.at)
	})
	return sorted
}
