package detector

import (
	"strconv"
	"strings"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// dateOrder records whether sampled dates prove the day/month order of an
// ambiguous dialect. A component above 12 can only be a day.
type dateOrder struct {
	dayFirstSeen  bool // first component above 12
	daySecondSeen bool // second component above 12
}

func (o dateOrder) observe(spec *parser.DialectSpec, date string) dateOrder {
	if !spec.Ambiguous {
		return o
	}
	parts := strings.FieldsFunc(date, func(r rune) bool { return r == '/' || r == '.' || r == '-' })
	if len(parts) < 2 {
		return o
	}
	if n, err := strconv.Atoi(parts[0]); err == nil && n > 12 {
		o.dayFirstSeen = true
	}
	if n, err := strconv.Atoi(parts[1]); err == nil && n > 12 {
		o.daySecondSeen = true
	}
	return o
}

func (o dateOrder) confirmed() bool {
	return o.dayFirstSeen || o.daySecondSeen
}

// assumedOrder describes the order a dialect's layout reads dates in.
func assumedOrder(spec *parser.DialectSpec) string {
	if strings.HasPrefix(spec.Layout, "2/1") || strings.HasPrefix(spec.Layout, "2.1") {
		return "day/month"
	}
	return "month/day"
}
