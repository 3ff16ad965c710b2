package risk

import (
	"fmt"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/nextstep"
)

// =============================================================================
// Engine - pure calculator
// =============================================================================

// Engine scores deal staleness risk (pure calculator)
// ⭐ SSOT: fetching deals and building queues happen in upper layers;
// internal/risk only evaluates a single snapshot
type Engine struct {
	cal        calendar.Calendar
	thresholds ThresholdSet
}

// NewEngine creates a risk engine. Nil thresholds fall back to DefaultThresholds.
func NewEngine(cal calendar.Calendar, thresholds ThresholdSet) *Engine {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	return &Engine{cal: cal, thresholds: thresholds}
}

// Assess evaluates the five risk factors for a deal.
// Level is stale for two or more factors, at_risk for exactly one, healthy for none.
// Closed deals are healthy with no factors.
func (e *Engine) Assess(deal contracts.DealSnapshot) contracts.RiskAssessment {
	category := CategorizeStage(deal.StageName)
	if category == contracts.StageClosed {
		return contracts.RiskAssessment{
			Level:    contracts.RiskHealthy,
			Category: category,
			Factors:  []contracts.RiskFactor{},
		}
	}

	thr := e.thresholds[category]
	factors := make([]contracts.RiskFactor, 0, 5)

	// 1. Stage age
	daysInStage := e.cal.DaysSince(StageEntryDate(deal))
	if daysInStage >= thr.AtRisk {
		band, limit := "at-risk", thr.AtRisk
		if daysInStage >= thr.Stale {
			band, limit = "stale", thr.Stale
		}
		factors = append(factors, contracts.RiskFactor{
			Kind:    contracts.FactorStageAge,
			Message: fmt.Sprintf("%d days in %s (%s threshold: %d days)", daysInStage, stageLabel(deal), band, limit),
		})
	}

	// 2. Activity drought
	var daysSinceActivity *int
	if deal.LastActivityAt != nil {
		days := e.cal.DaysSince(*deal.LastActivityAt)
		daysSinceActivity = &days
		if days > thr.InactivitySLA {
			factors = append(factors, contracts.RiskFactor{
				Kind:    contracts.FactorActivityDrought,
				Message: fmt.Sprintf("No activity in %d days (SLA: %d days)", days, thr.InactivitySLA),
			})
		}
	} else if e.cal.DaysSince(deal.CreatedAt) > NewDealGraceDays {
		factors = append(factors, contracts.RiskFactor{
			Kind:    contracts.FactorActivityDrought,
			Message: "No activity recorded since the deal was created",
		})
	}

	// 3. No next step and nothing scheduled
	hasUpcomingActivity := deal.NextActivityAt != nil && !e.cal.IsPast(*deal.NextActivityAt)
	if deal.NextStep.IsBlank() && !hasUpcomingActivity {
		factors = append(factors, contracts.RiskFactor{
			Kind:    contracts.FactorNoNextStep,
			Message: "No next step and no upcoming activity scheduled",
		})
	}

	// 4. Close date passed
	if deal.CloseDate != nil && e.cal.IsPastDate(*deal.CloseDate) {
		factors = append(factors, contracts.RiskFactor{
			Kind:    contracts.FactorOverdue,
			Message: fmt.Sprintf("Close date passed %d days ago (%s)", -e.cal.DaysUntil(*deal.CloseDate), e.cal.FormatDate(*deal.CloseDate)),
		})
	}

	// 5. Next step overdue
	if overdue, days := nextstep.IsOverdue(e.cal, deal.NextStep); overdue {
		factors = append(factors, contracts.RiskFactor{
			Kind:    contracts.FactorOverdueNextStep,
			Message: fmt.Sprintf("Next step was due %d days ago", days),
		})
	}

	return contracts.RiskAssessment{
		Level:             LevelFor(len(factors)),
		Category:          category,
		Factors:           factors,
		DaysInStage:       daysInStage,
		DaysSinceActivity: daysSinceActivity,
	}
}

// LevelFor buckets a factor count. Any two signals are equally severe.
func LevelFor(factorCount int) contracts.RiskLevel {
	switch {
	case factorCount >= 2:
		return contracts.RiskStale
	case factorCount == 1:
		return contracts.RiskAtRisk
	default:
		return contracts.RiskHealthy
	}
}

func stageLabel(deal contracts.DealSnapshot) string {
	if deal.StageName == "" {
		return "current stage"
	}
	return deal.StageName
}
