package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// meridiemRe captures a trailing AM/PM marker in any of the spellings seen in
// exports ("PM", "pm", "p.m.", "PM" without a leading space).
var meridiemRe = regexp.MustCompile(`\s*([AaPp])\.?[Mm]\.?$`)

// Normalize converts a dialect's raw date and time strings into a point in
// time. The primary layout is tried first, then the dialect's fallback layout
// if it has one.
func Normalize(d Dialect, date, clock string) (time.Time, error) {
	spec := d.Spec()
	if spec == nil {
		return time.Time{}, fmt.Errorf("%w: dialect %d", ErrUnrecognizedDialect, int(d))
	}

	value := strings.TrimSpace(spaceNormalizer.Replace(date)) + " " + normalizeClock(clock, spec.Clock12h)

	ts, err := time.Parse(spec.Layout, value)
	if err == nil {
		return ts, nil
	}
	if spec.FallbackLayout != "" {
		if ts, fallbackErr := time.Parse(spec.FallbackLayout, value); fallbackErr == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q: %v", ErrUnparseableTimestamp, spec.Name, value, err)
}

func normalizeClock(clock string, twelveHour bool) string {
	clock = strings.TrimSpace(spaceNormalizer.Replace(clock))
	if !twelveHour {
		return clock
	}
	return meridiemRe.ReplaceAllStringFunc(clock, func(m string) string {
		sub := meridiemRe.FindStringSubmatch(m)
		return " " + strings.ToUpper(sub[1]) + "M"
	})
}
