package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

func TestTimePeriod(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, PeriodNight},
		{4, PeriodNight},
		{5, PeriodMorning},
		{11, PeriodMorning},
		{12, PeriodAfternoon},
		{16, PeriodAfternoon},
		{17, PeriodEvening},
		{21, PeriodEvening},
		{22, PeriodNight},
		{23, PeriodNight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimePeriod(tt.hour), "hour %d", tt.hour)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30.0 seconds", FormatDuration(30))
	assert.Equal(t, "1.5 minutes", FormatDuration(90))
	assert.Equal(t, "1.5 hours", FormatDuration(5400))
	assert.Equal(t, "2.0 days", FormatDuration(172800))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.5, SafeDivide(5, 2))
	assert.Equal(t, 0.0, SafeDivide(5, 0))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,234", FormatNumber(-1234))
}

func TestValidate(t *testing.T) {
	day := 24 * time.Hour
	at := func(d time.Duration, body string) parser.Message {
		return parser.Message{Timestamp: baseTime.Add(d), Sender: "A", Body: body}
	}

	t.Run("empty", func(t *testing.T) {
		v := Validate(nil)
		assert.False(t, v.Valid)
		assert.Len(t, v.Issues, 1)
		assert.Equal(t, 0, v.TotalMessages)
	})

	t.Run("clean", func(t *testing.T) {
		v := Validate([]parser.Message{at(0, "a"), at(2*day, "b")})
		assert.True(t, v.Valid)
		assert.Empty(t, v.Issues)
		assert.Empty(t, v.Warnings)
		assert.Equal(t, 2, v.TotalMessages)
	})

	t.Run("short span", func(t *testing.T) {
		v := Validate([]parser.Message{at(0, "a"), at(time.Hour, "b")})
		assert.True(t, v.Valid)
		assert.Contains(t, v.Warnings, "chat data spans less than a day")
	})

	t.Run("duplicates and ordering", func(t *testing.T) {
		v := Validate([]parser.Message{
			at(2*day, "same"),
			at(0, "same"),
			at(3*day, "same"),
		})
		assert.True(t, v.Valid)
		assert.Contains(t, v.Warnings, "found 2 duplicate messages")
		assert.Contains(t, v.Warnings, "found 1 messages out of chronological order")
		assert.NotContains(t, v.Warnings, "chat data spans less than a day")
	})
}
