package contracts

import "time"

// =============================================================================
// Risk
// =============================================================================

// RiskLevel is the count-bucketed risk of a deal
type RiskLevel string

const (
	RiskHealthy RiskLevel = "healthy"
	RiskAtRisk  RiskLevel = "at_risk"
	RiskStale   RiskLevel = "stale"
)

// RiskFactorKind identifies one risk signal
type RiskFactorKind string

const (
	FactorStageAge        RiskFactorKind = "stage_age"
	FactorActivityDrought RiskFactorKind = "activity_drought"
	FactorNoNextStep      RiskFactorKind = "no_next_step"
	FactorOverdue         RiskFactorKind = "overdue"
	FactorOverdueNextStep RiskFactorKind = "overdue_next_step"
)

// RiskFactor is one fired risk signal with a display message
type RiskFactor struct {
	Kind    RiskFactorKind `json:"kind"`
	Message string         `json:"message"`
}

// RiskAssessment is the output of the risk assessor.
// DaysSinceActivity is nil when the deal has no recorded activity.
type RiskAssessment struct {
	Level             RiskLevel     `json:"level"`
	Category          StageCategory `json:"category"`
	Factors           []RiskFactor  `json:"factors"`
	DaysInStage       int           `json:"days_in_stage"`
	DaysSinceActivity *int          `json:"days_since_activity"`
}

// =============================================================================
// Hygiene
// =============================================================================

// HygieneStatus is a state of the hygiene remediation workflow
type HygieneStatus string

const (
	HygieneCompliant       HygieneStatus = "compliant"
	HygieneNeedsCommitment HygieneStatus = "needs_commitment"
	HygienePending         HygieneStatus = "pending"
	HygieneEscalated       HygieneStatus = "escalated"
)

// HygieneCheck is the raw missing-field check
type HygieneCheck struct {
	IsCompliant   bool                 `json:"is_compliant"`
	MissingFields []HygieneRequirement `json:"missing_fields"`
}

// HygieneStatusResult is the output of the hygiene state machine
type HygieneStatusResult struct {
	Status          HygieneStatus        `json:"status"`
	MissingFields   []HygieneRequirement `json:"missing_fields"`
	Reason          string               `json:"reason"`
	BusinessDaysOld int                  `json:"business_days_old"`
	IsNewDeal       bool                 `json:"is_new_deal"`
	CommitmentDate  *time.Time           `json:"commitment_date"`
}

// =============================================================================
// Staleness
// =============================================================================

// StalledSeverity is the staleness tier. The zero value means "not stalled"
// and serializes as null.
type StalledSeverity string

const (
	SeverityNone     StalledSeverity = ""
	SeverityWatch    StalledSeverity = "watch"
	SeverityWarning  StalledSeverity = "warning"
	SeverityCritical StalledSeverity = "critical"
)

// MarshalJSON writes the empty severity as null
func (s StalledSeverity) MarshalJSON() ([]byte, error) {
	if s == SeverityNone {
		return []byte("null"), nil
	}
	return []byte(`"` + string(s) + `"`), nil
}

// AggravatingFactors are display-only signals on a stalled deal
type AggravatingFactors struct {
	CloseDatePast   bool `json:"close_date_past"`
	CloseDateSoon   bool `json:"close_date_soon"`
	NoNextStep      bool `json:"no_next_step"`
	NextStepOverdue bool `json:"next_step_overdue"`
}

// Count returns how many aggravating factors are set
func (a AggravatingFactors) Count() int {
	n := 0
	for _, set := range []bool{a.CloseDatePast, a.CloseDateSoon, a.NoNextStep, a.NextStepOverdue} {
		if set {
			n++
		}
	}
	return n
}

// StalledDealResult is the output of the staleness classifier
type StalledDealResult struct {
	IsStalled         bool               `json:"is_stalled"`
	Severity          StalledSeverity    `json:"severity"`
	DaysSinceActivity int                `json:"days_since_activity"`
	Factors           AggravatingFactors `json:"factors"`
}

// =============================================================================
// Next Step
// =============================================================================

// NextStepComplianceStatus is the result of the next-step checker
type NextStepComplianceStatus string

const (
	NextStepCompliant NextStepComplianceStatus = "compliant"
	NextStepMissing   NextStepComplianceStatus = "missing"
	NextStepOverdue   NextStepComplianceStatus = "overdue"
)

// NextStepCompliance is the output of the next-step checker
type NextStepCompliance struct {
	Status      NextStepComplianceStatus `json:"status"`
	DaysOverdue int                      `json:"days_overdue"`
	DueDate     *time.Time               `json:"due_date"`
}

// =============================================================================
// Week 1 Touch Cadence
// =============================================================================

// CadenceStatus is the week-1 cadence classification
type CadenceStatus string

const (
	CadenceOnTrack  CadenceStatus = "on_track"
	CadenceBehind   CadenceStatus = "behind"
	CadenceCritical CadenceStatus = "critical"
)

// TouchCounts tallies qualifying touches inside the window
type TouchCounts struct {
	Calls       int        `json:"calls"`
	Emails      int        `json:"emails"`
	Total       int        `json:"total"`
	LastTouchAt *time.Time `json:"last_touch_at"`
}

// Week1TouchAnalysis is the output of the touch-cadence analyzer
type Week1TouchAnalysis struct {
	Touches         TouchCounts   `json:"touches"`
	Target          int           `json:"target"`
	Gap             int           `json:"gap"`
	Status          CadenceStatus `json:"status"`
	WindowStart     time.Time     `json:"window_start"`
	WindowEnd       time.Time     `json:"window_end"`
	WindowOpen      bool          `json:"window_open"`
	MeetingBooked   bool          `json:"meeting_booked"`
	MeetingBookedAt *time.Time    `json:"meeting_booked_at"`
}
