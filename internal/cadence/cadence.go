package cadence

import (
	"strings"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

const (
	// DefaultTarget is the number of touches expected in the first week
	DefaultTarget = 6
	// WindowBusinessDays is the length of the onboarding window after the creation day
	WindowBusinessDays = 5

	openTolerance   = 3
	closedTolerance = 2
)

// Analyzer scores week-1 outreach cadence
type Analyzer struct {
	cal         calendar.Calendar
	ownerDomain string
	target      int
}

// NewAnalyzer creates an analyzer. ownerDomain qualifies generic-direction emails
// sent from the company's own mailboxes; target <= 0 uses DefaultTarget.
func NewAnalyzer(cal calendar.Calendar, ownerDomain string, target int) *Analyzer {
	if target <= 0 {
		target = DefaultTarget
	}
	return &Analyzer{
		cal:         cal,
		ownerDomain: strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ownerDomain), "@")),
		target:      target,
	}
}

// Target returns the touch target
func (a *Analyzer) Target() int { return a.target }

// Window returns the week-1 window for a deal created at createdAt:
// midnight of the creation day through the end of the 5th following business day
func (a *Analyzer) Window(createdAt time.Time) (start, end time.Time) {
	start = a.cal.StartOfDay(createdAt)
	end = a.cal.EndOfDay(calendar.AddBusinessDays(start, WindowBusinessDays))
	return start, end
}

// IsOutboundEmail reports whether an email counts as a touch.
// Explicit outbound emails always count; generic EMAIL direction counts when sent from ownerDomain.
func IsOutboundEmail(email contracts.Email, ownerDomain string) bool {
	switch email.Direction {
	case contracts.EmailOutgoing:
		return true
	case contracts.EmailGeneric:
		if ownerDomain == "" {
			return false
		}
		return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email.FromEmail)), "@"+ownerDomain)
	default:
		return false
	}
}

// AnalyzeWeek1 counts touches inside the window and classifies cadence.
// A meeting booked inside the window forces on_track with no gap.
func (a *Analyzer) AnalyzeWeek1(createdAt time.Time, eng contracts.Engagements) contracts.Week1TouchAnalysis {
	start, end := a.Window(createdAt)
	inWindow := func(t time.Time) bool {
		return !t.Before(start) && !t.After(end)
	}

	var touches contracts.TouchCounts
	markTouch := func(t time.Time) {
		if touches.LastTouchAt == nil || t.After(*touches.LastTouchAt) {
			tt := t
			touches.LastTouchAt = &tt
		}
	}

	for _, c := range eng.Calls {
		if inWindow(c.Timestamp) {
			touches.Calls++
			markTouch(c.Timestamp)
		}
	}
	for _, e := range eng.Emails {
		if inWindow(e.Timestamp) && IsOutboundEmail(e, a.ownerDomain) {
			touches.Emails++
			markTouch(e.Timestamp)
		}
	}
	touches.Total = touches.Calls + touches.Emails

	windowOpen := !a.cal.Now().After(end)

	result := contracts.Week1TouchAnalysis{
		Touches:     touches,
		Target:      a.target,
		Gap:         max(a.target-touches.Total, 0),
		WindowStart: start,
		WindowEnd:   end,
		WindowOpen:  windowOpen,
	}
	result.Status = classify(result.Gap, windowOpen)

	// earliest booking inside the window
	for _, m := range eng.Meetings {
		if !inWindow(m.CreatedAt) {
			continue
		}
		if result.MeetingBookedAt == nil || m.CreatedAt.Before(*result.MeetingBookedAt) {
			booked := m.CreatedAt
			result.MeetingBookedAt = &booked
		}
	}
	if result.MeetingBookedAt != nil {
		result.MeetingBooked = true
		result.Status = contracts.CadenceOnTrack
		result.Gap = 0
	}

	return result
}

func classify(gap int, windowOpen bool) contracts.CadenceStatus {
	if gap <= 0 {
		return contracts.CadenceOnTrack
	}
	tolerance := closedTolerance
	if windowOpen {
		tolerance = openTolerance
	}
	if gap <= tolerance {
		return contracts.CadenceBehind
	}
	return contracts.CadenceCritical
}

// StatusRank orders cadence statuses for sorting, worst first
func StatusRank(s contracts.CadenceStatus) int {
	switch s {
	case contracts.CadenceCritical:
		return 0
	case contracts.CadenceBehind:
		return 1
	default:
		return 2
	}
}
