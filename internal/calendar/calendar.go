package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// Clock returns the current instant
type Clock func() time.Time

// Calendar does business-day arithmetic against an injectable "now".
// Weekends are Saturday and Sunday; there is no holiday calendar.
// ⭐ SSOT: every date predicate in the classification core goes through here
//
// The zero value uses the system clock and UTC.
type Calendar struct {
	now Clock
	loc *time.Location
}

// New creates a Calendar on the system clock in the given business location
func New(loc *time.Location) Calendar {
	return Calendar{now: time.Now, loc: loc}
}

// NewAt creates a Calendar frozen at now. Used by tests and the classify CLI.
func NewAt(now time.Time, loc *time.Location) Calendar {
	return Calendar{now: func() time.Time { return now }, loc: loc}
}

// WithClock returns a copy of c that reads time from clock
func (c Calendar) WithClock(clock Clock) Calendar {
	c.now = clock
	return c
}

// Location returns the business location
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Now returns the current instant in the business location
func (c Calendar) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.Location())
	}
	return c.now().In(c.Location())
}

// Today returns midnight of the current civil day
func (c Calendar) Today() time.Time {
	return c.StartOfDay(c.Now())
}

// StartOfDay returns midnight of t's civil day in the business location
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location())
}

// EndOfDay returns the last millisecond of t's civil day
func (c Calendar) EndOfDay(t time.Time) time.Time {
	return c.StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// IsBusinessDay reports whether t falls on Monday through Friday
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDaysSince counts weekdays after t's civil day up to and including today
func (c Calendar) BusinessDaysSince(t time.Time) int {
	return c.BusinessDaysBetween(t, c.Now())
}

// BusinessDaysBetween counts weekdays in (from, to] by civil day. Zero when to is not after from.
func (c Calendar) BusinessDaysBetween(from, to time.Time) int {
	start := c.StartOfDay(from)
	days := civilDay(c.StartOfDay(to)) - civilDay(start)
	if days <= 0 {
		return 0
	}

	// every run of 7 consecutive days holds 5 weekdays
	count := days / 7 * 5
	first := int(start.Weekday())
	for i := int64(1); i <= days%7; i++ {
		if wd := time.Weekday((first + int(i)) % 7); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return int(count)
}

// civilDay numbers t's calendar date in its own zone, so spans of any length
// avoid time.Duration overflow and DST
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DaysSince returns whole 24h periods elapsed since t, floored at zero
func (c Calendar) DaysSince(t time.Time) int {
	elapsed := c.Now().Sub(t)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / day)
}

// IsPast reports whether the instant t is before now
func (c Calendar) IsPast(t time.Time) bool {
	return t.Before(c.Now())
}

// IsPastDate reports whether t's civil day is before today.
// A date-only value due today is not past.
func (c Calendar) IsPastDate(t time.Time) bool {
	return c.StartOfDay(t).Before(c.Today())
}

// DaysUntil returns the signed number of civil days from today to t's day.
// Negative when t is in the past.
func (c Calendar) DaysUntil(t time.Time) int {
	target := c.StartOfDay(t)
	today := c.Today()

	// Civil days in a fixed zone are exactly 24h apart; Round absorbs DST in named zones.
	return int(target.Sub(today).Round(day) / day)
}

// AddBusinessDays steps n weekdays forward from t, keeping t's clock time.
// n <= 0 returns t unchanged.
func AddBusinessDays(t time.Time, n int) time.Time {
	added := 0
	for added < n {
		t = t.AddDate(0, 0, 1)
		if IsBusinessDay(t) {
			added++
		}
	}
	return t
}

// ParseDate parses a civil date. Accepts "2006-01-02" and the date prefix of RFC 3339
// timestamps, returning midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) && s[len(dateLayout)] == 'T' {
		s = s[:len(dateLayout)]
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse civil date %q: %w", s, err)
	}
	return t, nil
}

// MustParseDate is ParseDate for literals. Malformed input is a programmer error and panics.
func MustParseDate(s string, loc *time.Location) time.Time {
	t, err := ParseDate(s, loc)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate renders the civil date of t in the business location
func (c Calendar) FormatDate(t time.Time) string {
	return t.In(c.Location()).Format(dateLayout)
}
