package parser

import (
	"log/slog"
	"strings"
)

// Reassemble walks the lines once and builds the message sequence. A line
// that is not a parseable header extends the most recent message.
func Reassemble(lines []string, opts ...Option) ([]Message, error) {
	msgs, _, err := reassemble(lines, newOptions(opts))
	return msgs, err
}

func reassemble(lines []string, o *options) ([]Message, Stats, error) {
	var (
		msgs  []Message
		stats Stats
	)
	stats.Lines = len(lines)

	for i, line := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			stats.Blank++
			continue
		}

		raw, ok := o.matcher.Match(line)
		if ok {
			ts, err := Normalize(raw.Dialect, raw.Date, raw.Time)
			if err == nil {
				body := strings.TrimSpace(raw.Message)
				if body == "" {
					stats.Dropped++
					o.logger.Debug("dropping header with empty body", slog.Int("line", lineNum))
					continue
				}
				msgs = append(msgs, Message{
					Timestamp: ts,
					Sender:    strings.TrimSpace(raw.Sender),
					Body:      body,
					Dialect:   raw.Dialect,
					Line:      lineNum,
				})
				continue
			}
			o.logger.Debug("header timestamp rejected, treating as continuation",
				slog.Int("line", lineNum),
				slog.String("dialect", raw.Dialect.String()),
				slog.Any("error", err))
		}

		if len(msgs) == 0 || looksBracketed(trimmed) {
			stats.Dropped++
			o.logger.Debug("dropping unattached line", slog.Int("line", lineNum))
			continue
		}
		last := &msgs[len(msgs)-1]
		last.Body += "\n" + trimmed
		stats.Continuations++
	}

	stats.Records = len(msgs)
	if len(msgs) == 0 {
		return nil, stats, ErrEmptyChat
	}
	return msgs, stats, nil
}
