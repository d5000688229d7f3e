// Package analyzer aggregates parsed chat messages into activity, sender,
// vocabulary, emoji, response-time and conversation-starter statistics.
package analyzer

import (
	"time"
)

// Stats is the complete aggregation output. Sections are nil when the
// engine producing them was not run.
type Stats struct {
	Totals    Totals          `json:"totals"`
	Activity  *ActivityStats  `json:"activity,omitempty"`
	Senders   *SenderStats    `json:"senders,omitempty"`
	Lexical   *LexicalStats   `json:"lexical,omitempty"`
	Emoji     *EmojiStats     `json:"emoji,omitempty"`
	Responses *ResponseStats  `json:"responses,omitempty"`
	Starters  *StarterStats   `json:"starters,omitempty"`
	Filter    *FilterSettings `json:"filter,omitempty"`
}

// Totals are whole-chat counts over the analyzed messages.
type Totals struct {
	Messages int       `json:"messages"`
	Senders  int       `json:"senders"`
	Words    int       `json:"words"`
	Chars    int       `json:"chars"`
	URLs     int       `json:"urls"`
	Emojis   int       `json:"emojis"`
	First    time.Time `json:"first"`
	Last     time.Time `json:"last"`

	// SpanDays is the time between first and last message in days.
	SpanDays float64 `json:"span_days"`
}

// FilterSettings records the message filters that were applied.
type FilterSettings struct {
	TimeRange *TimeRange `json:"time_range,omitempty"`
	Senders   []string   `json:"senders,omitempty"`
	Skipped   int        `json:"skipped"`
}

// Count is a ranked key with its number of occurrences.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ActivityStats buckets messages by calendar and clock.
type ActivityStats struct {
	ByHour     [24]int `json:"by_hour"`
	ByWeekday  []Count `json:"by_weekday"` // Monday first
	ByMonth    []Count `json:"by_month"`   // January first
	ByYear     []Count `json:"by_year"`
	ByDate     []Count `json:"by_date"`
	ByPeriod   []Count `json:"by_period"` // Morning, Afternoon, Evening, Night
	BusiestDay Count   `json:"busiest_day"`
	PeakHour   int     `json:"peak_hour"`
	ActiveDays int     `json:"active_days"`
}

// SenderStats ranks participants.
type SenderStats struct {
	// Ranking is sorted by message count descending, then name.
	Ranking []SenderSummary `json:"ranking"`
}

// SenderSummary holds one participant's totals.
type SenderSummary struct {
	Name     string  `json:"name"`
	Messages int     `json:"messages"`
	Words    int     `json:"words"`
	Chars    int     `json:"chars"`
	URLs     int     `json:"urls"`
	Emojis   int     `json:"emojis"`
	AvgWords float64 `json:"avg_words"`

	// Share is the fraction of all analyzed messages sent by this sender.
	Share float64 `json:"share"`
}

// LexicalStats holds vocabulary frequencies.
type LexicalStats struct {
	TopWords    []Count `json:"top_words"`
	TopMentions []Count `json:"top_mentions"`
	TopHashtags []Count `json:"top_hashtags"`
	UniqueWords int     `json:"unique_words"`
}

// EmojiStats holds emoji frequencies.
type EmojiStats struct {
	Top    []Count `json:"top"`
	Total  int     `json:"total"`
	Unique int     `json:"unique"`
}

// ResponseStats describes reply latency between different senders. All
// durations are in minutes. Count is zero when no reply pair exists.
type ResponseStats struct {
	Count         int                `json:"count"`
	AvgMinutes    float64            `json:"avg_minutes"`
	MedianMinutes float64            `json:"median_minutes"`
	MinMinutes    float64            `json:"min_minutes"`
	MaxMinutes    float64            `json:"max_minutes"`
	ByResponder   []ResponderSummary `json:"by_responder"`
}

// ResponderSummary is the reply latency of one participant.
type ResponderSummary struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// StarterStats counts who opens conversations.
type StarterStats struct {
	Conversations int     `json:"conversations"`
	GapMinutes    float64 `json:"gap_minutes"`
	BySender      []Count `json:"by_sender"`
}

// TimeRange defines a time window for filtering messages. Either bound may
// be zero to leave that side open.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range, bounds included.
func (r *TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}
