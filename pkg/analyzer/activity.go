package analyzer

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

var (
	weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	periodOrder  = []string{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}
	monthOrder   = func() []string {
		months := make([]string, 0, 12)
		for m := time.January; m <= time.December; m++ {
			months = append(months, m.String())
		}
		return months
	}()
)

// ActivityEngine buckets messages by hour, weekday, month, year, date and
// time of day.
type ActivityEngine struct {
	mu       sync.Mutex
	hours    [24]int
	weekdays map[string]int
	months   map[string]int
	years    map[string]int
	dates    map[string]int
	periods  map[string]int
}

// NewActivityEngine creates an activity engine.
func NewActivityEngine() *ActivityEngine {
	e := &ActivityEngine{}
	e.Reset()
	return e
}

// Name returns the engine name.
func (e *ActivityEngine) Name() string {
	return "activity"
}

// Process handles a single message.
func (e *ActivityEngine) Process(_ context.Context, msg *parser.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ts := msg.Timestamp
	e.hours[ts.Hour()]++
	e.weekdays[ts.Weekday().String()]++
	e.months[ts.Month().String()]++
	e.years[strconv.Itoa(ts.Year())]++
	e.dates[ts.Format(time.DateOnly)]++
	e.periods[TimePeriod(ts.Hour())]++
	return nil
}

// Finalize writes the activity section.
func (e *ActivityEngine) Finalize(_ context.Context, stats *Stats) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := &ActivityStats{
		ByHour:     e.hours,
		ByWeekday:  ordered(e.weekdays, weekdayOrder),
		ByMonth:    ordered(e.months, monthOrder),
		ByPeriod:   ordered(e.periods, periodOrder),
		ByYear:     ordered(e.years, sortedKeys(e.years)),
		ByDate:     ordered(e.dates, sortedKeys(e.dates)),
		ActiveDays: len(e.dates),
	}

	// Ties go to the earliest date and the earliest hour.
	for _, d := range a.ByDate {
		if d.Count > a.BusiestDay.Count {
			a.BusiestDay = d
		}
	}
	for h, n := range e.hours {
		if n > e.hours[a.PeakHour] {
			a.PeakHour = h
		}
	}

	stats.Activity = a
	return nil
}

// Reset clears internal state for reuse.
func (e *ActivityEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.hours = [24]int{}
	e.weekdays = make(map[string]int)
	e.months = make(map[string]int)
	e.years = make(map[string]int)
	e.dates = make(map[string]int)
	e.periods = make(map[string]int)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
