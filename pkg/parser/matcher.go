package parser

import (
	"fmt"
	"strings"
)

// spaceNormalizer maps the narrow no-break space that some exports put
// between the clock and the AM/PM marker to a plain space.
var spaceNormalizer = strings.NewReplacer("\u202f", " ")

// Matcher recognizes message header lines.
type Matcher struct {
	dialects []*DialectSpec
}

// NewMatcher creates a matcher over the given dialects, tried in the given
// order. With no arguments it uses every supported dialect in priority order.
func NewMatcher(dialects ...*DialectSpec) *Matcher {
	if len(dialects) == 0 {
		dialects = dialectTable
	}
	return &Matcher{dialects: dialects}
}

// OnlyDialects builds a matcher restricted to the named dialects, keeping the
// global priority order.
func OnlyDialects(names []string) (*Matcher, error) {
	if len(names) == 0 {
		return NewMatcher(), nil
	}
	want := make(map[Dialect]bool, len(names))
	for _, name := range names {
		d, err := ParseDialect(name)
		if err != nil {
			return nil, err
		}
		want[d] = true
	}
	var selected []*DialectSpec
	for _, spec := range dialectTable {
		if want[spec.Dialect] {
			selected = append(selected, spec)
		}
	}
	return NewMatcher(selected...), nil
}

var defaultMatcher = NewMatcher()

// Match reports whether line starts a new message in any supported dialect.
func Match(line string) (RawLineMatch, bool) {
	return defaultMatcher.Match(line)
}

// Match tries each dialect in order and returns the first match. It does not
// try further dialects once one pattern matches.
func (m *Matcher) Match(line string) (RawLineMatch, bool) {
	line = strings.TrimSpace(spaceNormalizer.Replace(line))
	for _, spec := range m.dialects {
		groups := spec.Pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		return RawLineMatch{
			Dialect: spec.Dialect,
			Date:    groups[spec.Pattern.SubexpIndex("date")],
			Time:    groups[spec.Pattern.SubexpIndex("time")],
			Sender:  groups[spec.Pattern.SubexpIndex("sender")],
			Message: groups[spec.Pattern.SubexpIndex("message")],
		}, true
	}
	return RawLineMatch{}, false
}

// MatchLine is Match with an error for lines no dialect recognizes.
func (m *Matcher) MatchLine(line string) (RawLineMatch, error) {
	raw, ok := m.Match(line)
	if !ok {
		return RawLineMatch{}, fmt.Errorf("%w: %.40q", ErrUnrecognizedDialect, line)
	}
	return raw, nil
}

// looksBracketed reports whether a line opens like a bracketed header, even
// if it failed to parse as one.
func looksBracketed(line string) bool {
	line = strings.TrimLeft(strings.TrimSpace(line), invisibleMarks)
	return strings.HasPrefix(line, "[")
}
