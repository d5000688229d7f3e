package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Dialect identifies one supported timestamp/sender line shape.
type Dialect int

// Supported dialects. The numeric values are stable identifiers; matching
// order is defined by Dialects, not by these values.
const (
	DialectUnknown Dialect = iota
	DialectBracketed
	DialectBracketedMarker
	DialectDashDMY4
	DialectDashDMY2
	DialectDashMDY12h
	DialectISO
	DialectDotted
)

// DialectSpec describes how to recognize and timestamp one dialect.
type DialectSpec struct {
	Dialect    Dialect
	Name       string
	Pattern    *regexp.Regexp
	PatternStr string

	// Layout is the primary Go time layout for "<date> <time>".
	Layout string

	// FallbackLayout reinterprets a 2-digit year as 4 digits. Empty when the
	// dialect has no fallback.
	FallbackLayout string

	Clock12h bool

	// Ambiguous is set when the day/month order cannot be told from the
	// shape alone.
	Ambiguous bool

	Example string
}

// invisibleMarks are the zero-width characters some exports put in front of
// a bracketed header.
const invisibleMarks = "\u200e\u200f\ufeff"

const (
	bodyPattern    = `\s(?P<sender>[^:]+?):\s*(?P<message>.*)$`
	dashBody       = `\s-` + bodyPattern
	meridiemSuffix = `\s?[AaPp]\.?[Mm]\.?`
)

// dialectTable is the matching priority order. Narrower shapes come before
// broader ones that could match the same line.
var dialectTable = []*DialectSpec{
	{
		Dialect:        DialectBracketedMarker,
		Name:           "bracketed-marker",
		PatternStr:     `^[` + invisibleMarks + `]+\[(?P<date>\d{1,2}/\d{1,2}/\d{2,4}),\s(?P<time>\d{1,2}:\d{2}:\d{2}` + meridiemSuffix + `)\]` + bodyPattern,
		Layout:         "1/2/06 3:04:05 PM",
		FallbackLayout: "1/2/2006 3:04:05 PM",
		Clock12h:       true,
		Example:        "\u200e[1/2/23, 3:04:05 PM] Alice: Hello",
	},
	{
		Dialect:        DialectBracketed,
		Name:           "bracketed",
		PatternStr:     `^\[(?P<date>\d{1,2}/\d{1,2}/\d{2,4}),\s(?P<time>\d{1,2}:\d{2}:\d{2}` + meridiemSuffix + `)\]` + bodyPattern,
		Layout:         "1/2/06 3:04:05 PM",
		FallbackLayout: "1/2/2006 3:04:05 PM",
		Clock12h:       true,
		Example:        "[1/2/23, 3:04:05 PM] Alice: Hello",
	},
	{
		Dialect:    DialectDashDMY4,
		Name:       "dash-dmy4",
		PatternStr: `^(?P<date>\d{1,2}/\d{1,2}/\d{4}),\s(?P<time>\d{1,2}:\d{2})` + dashBody,
		Layout:     "2/1/2006 15:04",
		Ambiguous:  true,
		Example:    "25/12/2023, 14:30 - Alice: Hello",
	},
	{
		Dialect:        DialectDashDMY2,
		Name:           "dash-dmy2",
		PatternStr:     `^(?P<date>\d{1,2}/\d{1,2}/\d{2,4}),\s(?P<time>\d{1,2}:\d{2})` + dashBody,
		Layout:         "2/1/06 15:04",
		FallbackLayout: "2/1/2006 15:04",
		Ambiguous:      true,
		Example:        "25/12/23, 14:30 - Alice: Hello",
	},
	{
		Dialect:    DialectDashMDY12h,
		Name:       "dash-mdy-12h",
		PatternStr: `^(?P<date>\d{1,2}/\d{1,2}/\d{2}),\s(?P<time>\d{1,2}:\d{2}` + meridiemSuffix + `)` + dashBody,
		Layout:     "1/2/06 3:04 PM",
		Clock12h:   true,
		Ambiguous:  true,
		Example:    "12/25/23, 2:30 PM - Alice: Hello",
	},
	{
		Dialect:    DialectISO,
		Name:       "iso",
		PatternStr: `^(?P<date>\d{4}-\d{2}-\d{2})\s(?P<time>\d{2}:\d{2}:\d{2})` + dashBody,
		Layout:     "2006-01-02 15:04:05",
		Example:    "2023-12-25 14:30:00 - Alice: Hello",
	},
	{
		Dialect:        DialectDotted,
		Name:           "dotted",
		PatternStr:     `^(?P<date>\d{1,2}\.\d{1,2}\.\d{2,4}),\s(?P<time>\d{1,2}:\d{2})` + dashBody,
		Layout:         "2.1.06 15:04",
		FallbackLayout: "2.1.2006 15:04",
		Example:        "25.12.23, 14:30 - Alice: Hello",
	},
}

var dialectsByID = map[Dialect]*DialectSpec{}

func init() {
	for _, d := range dialectTable {
		d.Pattern = regexp.MustCompile(d.PatternStr)
		dialectsByID[d.Dialect] = d
	}
}

// Dialects returns the supported dialects in matching priority order.
// The returned specs are shared and must not be modified.
func Dialects() []*DialectSpec {
	out := make([]*DialectSpec, len(dialectTable))
	copy(out, dialectTable)
	return out
}

// Spec returns the spec for a dialect, or nil for DialectUnknown.
func (d Dialect) Spec() *DialectSpec {
	return dialectsByID[d]
}

// String returns the dialect name.
func (d Dialect) String() string {
	if s := d.Spec(); s != nil {
		return s.Name
	}
	return "unknown"
}

// MarshalJSON encodes the dialect by name.
func (d Dialect) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a dialect name.
func (d *Dialect) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseDialect(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDialect resolves a dialect by name.
func ParseDialect(name string) (Dialect, error) {
	if name == "unknown" {
		return DialectUnknown, nil
	}
	for _, d := range dialectTable {
		if d.Name == name {
			return d.Dialect, nil
		}
	}
	return DialectUnknown, fmt.Errorf("%w: %q", ErrUnrecognizedDialect, name)
}
