package analyzer

import (
	"fmt"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// Validation is a sanity report over a parsed chat. Issues make the data
// unusable; warnings are worth showing but do not stop analysis.
type Validation struct {
	Valid         bool     `json:"valid"`
	Issues        []string `json:"issues"`
	Warnings      []string `json:"warnings"`
	TotalMessages int      `json:"total_messages"`
}

// Validate checks a message sequence for emptiness, a very short span,
// repeated bodies and out-of-order timestamps.
func Validate(msgs []parser.Message) Validation {
	v := Validation{
		Issues:        []string{},
		Warnings:      []string{},
		TotalMessages: len(msgs),
	}

	if len(msgs) == 0 {
		v.Issues = append(v.Issues, "no valid messages found in the chat")
		return v
	}

	first, last := msgs[0].Timestamp, msgs[0].Timestamp
	seen := make(map[string]bool, len(msgs))
	duplicates, outOfOrder := 0, 0

	for i, m := range msgs {
		if m.Timestamp.Before(first) {
			first = m.Timestamp
		}
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
		if i > 0 && m.Timestamp.Before(msgs[i-1].Timestamp) {
			outOfOrder++
		}
		if seen[m.Body] {
			duplicates++
		}
		seen[m.Body] = true
	}

	if last.Sub(first) < 24*time.Hour {
		v.Warnings = append(v.Warnings, "chat data spans less than a day")
	}
	if duplicates > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("found %d duplicate messages", duplicates))
	}
	if outOfOrder > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("found %d messages out of chronological order", outOfOrder))
	}

	v.Valid = len(v.Issues) == 0
	return v
}
