package staleness

import (
	"fmt"
	"sort"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/nextstep"
)

// CloseDateSoonDays is the window in which an upcoming close date is an aggravating factor
const CloseDateSoonDays = 14

// Thresholds are business-day limits for the staleness tiers
type Thresholds struct {
	Watch    int `yaml:"watch" json:"watch"`
	Warning  int `yaml:"warning" json:"warning"`
	Critical int `yaml:"critical" json:"critical"`
	MinAge   int `yaml:"min_age" json:"min_age"` // deals younger than this are never stalled
}

// Validate checks the tiers are non-negative and ordered
func (t Thresholds) Validate() error {
	if t.Watch < 0 || t.MinAge < 0 {
		return fmt.Errorf("thresholds must be non-negative: watch=%d min_age=%d", t.Watch, t.MinAge)
	}
	if !(t.Watch <= t.Warning && t.Warning <= t.Critical) {
		return fmt.Errorf("thresholds must satisfy watch <= warning <= critical: %d/%d/%d", t.Watch, t.Warning, t.Critical)
	}
	return nil
}

// DefaultThresholds returns the standard staleness tiers
func DefaultThresholds() Thresholds {
	return Thresholds{Watch: 7, Warning: 10, Critical: 14, MinAge: 7}
}

// Presets returns the named threshold sets offered to dashboard users
func Presets() map[string]Thresholds {
	return map[string]Thresholds{
		"default":    DefaultThresholds(),
		"aggressive": {Watch: 5, Warning: 7, Critical: 10, MinAge: 5},
		"relaxed":    {Watch: 10, Warning: 14, Critical: 21, MinAge: 10},
	}
}

// PresetNames lists the preset names in sorted order
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check decides whether a deal has gone dark.
// A future next activity always clears staleness. Aggravating factors are
// computed for stalled deals only and never change the severity.
func Check(cal calendar.Calendar, deal contracts.DealSnapshot, thr Thresholds) contracts.StalledDealResult {
	notStalled := contracts.StalledDealResult{}

	age := cal.BusinessDaysSince(deal.CreatedAt)
	if age <= thr.MinAge {
		return notStalled
	}

	// no activity ever: stalled since creation
	days := age
	if deal.LastActivityAt != nil {
		days = cal.BusinessDaysSince(*deal.LastActivityAt)
		if days <= thr.Watch {
			notStalled.DaysSinceActivity = days
			return notStalled
		}
	}

	if deal.NextActivityAt != nil && !cal.IsPast(*deal.NextActivityAt) {
		notStalled.DaysSinceActivity = days
		return notStalled
	}

	severity := contracts.SeverityWatch
	switch {
	case days > thr.Critical:
		severity = contracts.SeverityCritical
	case days > thr.Warning:
		severity = contracts.SeverityWarning
	}

	return contracts.StalledDealResult{
		IsStalled:         true,
		Severity:          severity,
		DaysSinceActivity: days,
		Factors:           aggravatingFactors(cal, deal),
	}
}

func aggravatingFactors(cal calendar.Calendar, deal contracts.DealSnapshot) contracts.AggravatingFactors {
	var f contracts.AggravatingFactors

	if deal.CloseDate != nil {
		if cal.IsPastDate(*deal.CloseDate) {
			f.CloseDatePast = true
		} else if cal.DaysUntil(*deal.CloseDate) <= CloseDateSoonDays {
			f.CloseDateSoon = true
		}
	}

	f.NoNextStep = deal.NextStep.IsBlank()
	f.NextStepOverdue, _ = nextstep.IsOverdue(cal, deal.NextStep)
	return f
}

// SeverityRank orders severities for sorting, most severe first
func SeverityRank(s contracts.StalledSeverity) int {
	switch s {
	case contracts.SeverityCritical:
		return 0
	case contracts.SeverityWarning:
		return 1
	case contracts.SeverityWatch:
		return 2
	default:
		return 3
	}
}
