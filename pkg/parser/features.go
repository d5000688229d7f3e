package parser

import (
	"strings"

	"github.com/ccollicutt/chatlens/pkg/textstat"
)

// Derive returns m with its Features computed from the timestamp and body.
// It reads nothing but m, so calling it again yields the same fields.
func Derive(m Message) Message {
	body := strings.TrimSpace(m.Body)
	ts := m.Timestamp

	emojis := textstat.Emojis(body)
	if emojis == nil {
		emojis = []string{}
	}

	m.Features = Features{
		Weekday:   ts.Weekday().String(),
		Month:     ts.Month().String(),
		Year:      ts.Year(),
		Date:      ts.Format("2006-01-02"),
		Clock:     ts.Format("15:04:05"),
		Hour:      ts.Hour(),
		CharCount: len([]rune(body)),
		WordCount: len(strings.Fields(body)),
		URLCount:  textstat.CountURLs(body),
		Emojis:    emojis,
	}
	return m
}

// DeriveAll derives features for every message into a new slice.
func DeriveAll(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Derive(m)
	}
	return out
}
