package queue

import (
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/fiscal"
)

// Filter narrows the deals a queue considers. Zero values mean "any".
type Filter struct {
	Pipeline contracts.PipelineKind
	OwnerID  string
	// ClosingIn keeps only deals whose close date falls inside the quarter
	ClosingIn *fiscal.QuarterInfo
}

// Match reports whether a deal passes the filter
func (f Filter) Match(deal contracts.DealSnapshot) bool {
	if f.Pipeline != "" && deal.Pipeline != f.Pipeline {
		return false
	}
	if f.OwnerID != "" && deal.OwnerID != f.OwnerID {
		return false
	}
	if f.ClosingIn != nil {
		if deal.CloseDate == nil || !f.ClosingIn.Contains(*deal.CloseDate) {
			return false
		}
	}
	return true
}

// DealSummary is the slice of a deal shown on every queue row
type DealSummary struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	OwnerID   string                 `json:"owner_id"`
	Pipeline  contracts.PipelineKind `json:"pipeline"`
	StageName string                 `json:"stage_name"`
	Amount    *float64               `json:"amount"`
	CloseDate *time.Time             `json:"close_date"`
	CreatedAt time.Time              `json:"created_at"`
}

// Summarize extracts the display fields of a deal
func Summarize(deal contracts.DealSnapshot) DealSummary {
	return DealSummary{
		ID:        deal.ID,
		Name:      deal.Name,
		OwnerID:   deal.OwnerID,
		Pipeline:  deal.Pipeline,
		StageName: deal.StageName,
		Amount:    deal.Amount,
		CloseDate: deal.CloseDate,
		CreatedAt: deal.CreatedAt,
	}
}

// =============================================================================
// Hygiene
// =============================================================================

type HygieneItem struct {
	Deal   DealSummary                   `json:"deal"`
	Result contracts.HygieneStatusResult `json:"result"`
}

type HygieneSummary struct {
	Total           int `json:"total"`
	Escalated       int `json:"escalated"`
	NeedsCommitment int `json:"needs_commitment"`
	Pending         int `json:"pending"`
}

type HygieneQueue struct {
	Items   []HygieneItem  `json:"items"`
	Summary HygieneSummary `json:"summary"`
}

// =============================================================================
// Stalled
// =============================================================================

type StalledItem struct {
	Deal   DealSummary                 `json:"deal"`
	Result contracts.StalledDealResult `json:"result"`
}

type StalledSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Watch    int `json:"watch"`
}

type StalledQueue struct {
	Preset  string         `json:"preset"`
	Items   []StalledItem  `json:"items"`
	Summary StalledSummary `json:"summary"`
}

// =============================================================================
// At Risk
// =============================================================================

type RiskItem struct {
	Deal       DealSummary              `json:"deal"`
	Assessment contracts.RiskAssessment `json:"assessment"`
}

type RiskSummary struct {
	Total  int `json:"total"`
	Stale  int `json:"stale"`
	AtRisk int `json:"at_risk"`
}

type RiskQueue struct {
	Items   []RiskItem  `json:"items"`
	Summary RiskSummary `json:"summary"`
}

// =============================================================================
// Next Step
// =============================================================================

type NextStepItem struct {
	Deal       DealSummary                  `json:"deal"`
	NextStep   string                       `json:"next_step"`
	Compliance contracts.NextStepCompliance `json:"compliance"`
}

type NextStepSummary struct {
	Total   int `json:"total"`
	Missing int `json:"missing"`
	Overdue int `json:"overdue"`
}

type NextStepQueue struct {
	Items   []NextStepItem  `json:"items"`
	Summary NextStepSummary `json:"summary"`
}

// =============================================================================
// Week 1
// =============================================================================

type Week1Item struct {
	Deal     DealSummary                  `json:"deal"`
	Analysis contracts.Week1TouchAnalysis `json:"analysis"`
}

type Week1Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Behind   int `json:"behind"`
	OnTrack  int `json:"on_track"`
}

type Week1Queue struct {
	Items   []Week1Item  `json:"items"`
	Summary Week1Summary `json:"summary"`
}

// =============================================================================
// Single deal
// =============================================================================

// Classification is every classifier's verdict on one deal
type Classification struct {
	Deal       contracts.DealSnapshot        `json:"deal"`
	Risk       contracts.RiskAssessment      `json:"risk"`
	Hygiene    contracts.HygieneStatusResult `json:"hygiene"`
	Staleness  contracts.StalledDealResult   `json:"staleness"`
	NextStep   contracts.NextStepCompliance  `json:"next_step"`
	Week1      *contracts.Week1TouchAnalysis `json:"week1"`
	Commitment *contracts.HygieneCommitment  `json:"commitment"`
}
