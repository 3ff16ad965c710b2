package calendar

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessDaysSince(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		now  time.Time
		want int
	}{
		{"monday to next monday", utcDate(2025, 1, 6), utcDate(2025, 1, 13), 5},
		{"friday to monday skips weekend", utcDate(2025, 1, 3), utcDate(2025, 1, 6), 1},
		{"saturday to sunday", utcDate(2025, 1, 4), utcDate(2025, 1, 5), 0},
		{"same day", utcDate(2025, 1, 6), utcDate(2025, 1, 6).Add(20 * time.Hour), 0},
		{"future date", utcDate(2025, 1, 10), utcDate(2025, 1, 6), 0},
		{"wednesday new year to the 20th", utcDate(2025, 1, 1), utcDate(2025, 1, 20), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := NewAt(tt.now, time.UTC)
			assert.Equal(t, tt.want, cal.BusinessDaysSince(tt.from))
		})
	}
}

// countWeekdays walks (from, to] one civil day at a time
func countWeekdays(from, to time.Time) int {
	n := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			n++
		}
	}
	return n
}

func TestBusinessDaysBetween_MatchesDayByDayCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)
	cal := New(time.UTC)
	origin := utcDate(2024, 12, 30)

	properties.Property("weekday count equals a walk over every day", prop.ForAll(
		func(offset, span int) bool {
			from := origin.AddDate(0, 0, offset)
			to := from.AddDate(0, 0, span)
			return cal.BusinessDaysBetween(from, to) == countWeekdays(from, to)
		},
		gen.IntRange(-400, 400),
		gen.IntRange(-10, 800),
	))

	properties.TestingRun(t)
}

func TestBusinessDaysBetween(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	cal := New(loc)

	t.Run("clock time is ignored", func(t *testing.T) {
		from := time.Date(2025, 1, 6, 23, 59, 0, 0, loc)
		to := time.Date(2025, 1, 7, 0, 1, 0, 0, loc)
		assert.Equal(t, 1, cal.BusinessDaysBetween(from, to))
	})

	t.Run("instants are read in the calendar zone", func(t *testing.T) {
		// Tuesday 03:00 UTC is still Monday evening in UTC-5
		from := time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC)
		to := time.Date(2025, 1, 7, 9, 0, 0, 0, loc)
		assert.Equal(t, 1, cal.BusinessDaysBetween(from, to))
	})

	t.Run("whole weeks", func(t *testing.T) {
		from := time.Date(2025, 1, 1, 9, 0, 0, 0, loc)
		assert.Equal(t, 5*52, cal.BusinessDaysBetween(from, from.AddDate(0, 0, 7*52)))
	})

	t.Run("spans beyond time.Duration", func(t *testing.T) {
		from := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, countWeekdays(from, to), New(time.UTC).BusinessDaysBetween(from, to))
	})

	t.Run("reversed range", func(t *testing.T) {
		assert.Zero(t, cal.BusinessDaysBetween(utcDate(2025, 1, 20), utcDate(2025, 1, 1)))
	})
}

func TestDaysSince(t *testing.T) {
	cal := NewAt(utcDate(2025, 1, 20), time.UTC)

	assert.Equal(t, 19, cal.DaysSince(utcDate(2025, 1, 1)))
	assert.Equal(t, 0, cal.DaysSince(utcDate(2025, 1, 19).Add(time.Hour)))
	assert.Equal(t, 0, cal.DaysSince(utcDate(2025, 2, 1)))
}

func TestIsPastAndIsPastDate(t *testing.T) {
	now := utcDate(2025, 1, 20).Add(10 * time.Hour)
	cal := NewAt(now, time.UTC)

	assert.True(t, cal.IsPast(utcDate(2025, 1, 20)), "midnight today is a past instant")
	assert.False(t, cal.IsPastDate(utcDate(2025, 1, 20)), "a date due today is not past")
	assert.True(t, cal.IsPastDate(utcDate(2025, 1, 19)))
	assert.False(t, cal.IsPast(now.Add(time.Minute)))
}

func TestDaysUntil(t *testing.T) {
	cal := NewAt(utcDate(2025, 1, 20).Add(15*time.Hour), time.UTC)

	assert.Equal(t, 5, cal.DaysUntil(utcDate(2025, 1, 25)))
	assert.Equal(t, 0, cal.DaysUntil(utcDate(2025, 1, 20)))
	assert.Equal(t, -5, cal.DaysUntil(utcDate(2025, 1, 15)))
}

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"monday plus five", utcDate(2025, 1, 6), 5, utcDate(2025, 1, 13)},
		{"friday plus one", utcDate(2025, 1, 3), 1, utcDate(2025, 1, 6)},
		{"saturday plus five", utcDate(2025, 1, 4), 5, utcDate(2025, 1, 10)},
		{"zero", utcDate(2025, 1, 4), 0, utcDate(2025, 1, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddBusinessDays(tt.start, tt.n))
		})
	}
}

func TestTodayUsesBusinessLocation(t *testing.T) {
	est := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC on the 7th is still the 6th in the business zone.
	cal := NewAt(time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC), est)

	today := cal.Today()
	assert.Equal(t, 6, today.Day())
	assert.Equal(t, est, today.Location())
	assert.Equal(t, "2025-01-06", cal.FormatDate(cal.Now()))
}

func TestParseDate(t *testing.T) {
	est := time.FixedZone("UTC-5", -5*3600)

	got, err := ParseDate("2025-03-31", est)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, est), got)

	got, err = ParseDate("2025-04-01T00:00:00.000Z", est)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, est), got)

	_, err = ParseDate("31/03/2025", est)
	assert.Error(t, err)
}

func TestMustParseDatePanicsOnMalformedInput(t *testing.T) {
	assert.Panics(t, func() { MustParseDate("not-a-date", time.UTC) })
	assert.NotPanics(t, func() { MustParseDate("2025-01-01", time.UTC) })
}

func TestZeroValueCalendar(t *testing.T) {
	var cal Calendar
	assert.Equal(t, time.UTC, cal.Location())
	assert.WithinDuration(t, time.Now(), cal.Now(), time.Second)
}
