package fiscal

import (
	"fmt"
	"math"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
)

// QuarterInfo describes one fiscal quarter.
// Boundaries are in the calendar's fixed business offset, not the server's local zone,
// so a bare close date lands in the quarter a business user expects.
type QuarterInfo struct {
	Year      int       `json:"year"`
	Quarter   int       `json:"quarter"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"` // last millisecond of the quarter
	Label     string    `json:"label"`
}

// Contains reports whether t falls inside the quarter (both ends inclusive)
func (q QuarterInfo) Contains(t time.Time) bool {
	return !t.Before(q.StartDate) && !t.After(q.EndDate)
}

// QuarterProgress measures how far "now" is through a quarter
type QuarterProgress struct {
	Quarter         QuarterInfo `json:"quarter"`
	ElapsedDays     int         `json:"elapsed_days"`
	TotalDays       int         `json:"total_days"`
	PercentComplete int         `json:"percent_complete"`
}

// Calculator computes calendar-quarter fiscal periods
type Calculator struct {
	cal calendar.Calendar
}

// NewCalculator creates a Calculator bound to a business calendar
func NewCalculator(cal calendar.Calendar) *Calculator {
	return &Calculator{cal: cal}
}

// QuarterInfo returns the boundaries of quarter (1-4) of year.
// An out-of-range quarter is a programmer error and panics.
func (c *Calculator) QuarterInfo(year, quarter int) QuarterInfo {
	if quarter < 1 || quarter > 4 {
		panic(fmt.Sprintf("fiscal: quarter must be 1-4, got %d", quarter))
	}

	loc := c.cal.Location()
	start := time.Date(year, time.Month(3*(quarter-1)+1), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 3, 0).Add(-time.Millisecond)

	return QuarterInfo{
		Year:      year,
		Quarter:   quarter,
		StartDate: start,
		EndDate:   end,
		Label:     fmt.Sprintf("Q%d %d", quarter, year),
	}
}

// QuarterFor returns the quarter containing instant t, read in the business offset
func (c *Calculator) QuarterFor(t time.Time) QuarterInfo {
	local := t.In(c.cal.Location())
	return c.QuarterInfo(local.Year(), (int(local.Month())-1)/3+1)
}

// CurrentQuarter returns the quarter containing now
func (c *Calculator) CurrentQuarter() QuarterInfo {
	return c.QuarterFor(c.cal.Now())
}

// Next returns the quarter after q
func (c *Calculator) Next(q QuarterInfo) QuarterInfo {
	if q.Quarter == 4 {
		return c.QuarterInfo(q.Year+1, 1)
	}
	return c.QuarterInfo(q.Year, q.Quarter+1)
}

// Progress clamps now into [start, end] and counts days with both boundary days included
func (c *Calculator) Progress(q QuarterInfo) QuarterProgress {
	now := c.cal.Now()
	if now.Before(q.StartDate) {
		now = q.StartDate
	}
	if now.After(q.EndDate) {
		now = q.EndDate
	}

	elapsed := int(now.Sub(q.StartDate)/(24*time.Hour)) + 1
	total := int(q.EndDate.Sub(q.StartDate)/(24*time.Hour)) + 1

	percent := int(math.Round(float64(elapsed) / float64(total) * 100))
	if percent > 100 {
		percent = 100
	}

	return QuarterProgress{
		Quarter:         q,
		ElapsedDays:     elapsed,
		TotalDays:       total,
		PercentComplete: percent,
	}
}
