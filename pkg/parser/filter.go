package parser

import "strings"

// DefaultNotices are the system and placeholder phrases whose presence marks
// a message as platform generated. Matching is a case-insensitive substring
// test, so a participant writing "omitted" in a normal sentence is removed
// too.
var DefaultNotices = []string{
	"<media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"sticker omitted",
	"gif omitted",
	"document omitted",
	"contact card omitted",
	"omitted",
	"this message was deleted",
	"you deleted this message",
	"messages and calls are end-to-end encrypted",
	"messages to this chat and calls are now secured",
	"missed voice call",
	"missed video call",
}

// FilterNotices drops every message whose body contains one of the notices.
// Relative order is preserved.
func FilterNotices(msgs []Message, notices []string) ([]Message, error) {
	lowered := make([]string, 0, len(notices))
	for _, n := range notices {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lowered = append(lowered, n)
		}
	}

	kept := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if !isNotice(strings.ToLower(m.Body), lowered) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoMessagesAfterFiltering
	}
	return kept, nil
}

func isNotice(body string, notices []string) bool {
	for _, n := range notices {
		if strings.Contains(body, n) {
			return true
		}
	}
	return false
}
