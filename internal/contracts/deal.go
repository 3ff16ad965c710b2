package contracts

import (
	"strings"
	"time"
)

// =============================================================================
// Pipelines & Stages
// =============================================================================

// PipelineKind identifies which sales motion a deal belongs to
type PipelineKind string

const (
	PipelineSales           PipelineKind = "sales"
	PipelineUpsell          PipelineKind = "upsell"
	PipelineCustomerSuccess PipelineKind = "customer_success"
)

// PipelineKinds lists every pipeline in display order
func PipelineKinds() []PipelineKind {
	return []PipelineKind{PipelineSales, PipelineUpsell, PipelineCustomerSuccess}
}

// Valid reports whether p is a known pipeline
func (p PipelineKind) Valid() bool {
	switch p {
	case PipelineSales, PipelineUpsell, PipelineCustomerSuccess:
		return true
	}
	return false
}

// StageCategory buckets a stage label for risk thresholds
type StageCategory string

const (
	StageEarly  StageCategory = "early"
	StageMid    StageCategory = "mid"
	StageLate   StageCategory = "late"
	StageClosed StageCategory = "closed"
)

// =============================================================================
// Next Step
// =============================================================================

// NextStepStatus is the outcome of the external due-date extraction on the next-step text
type NextStepStatus string

const (
	NextStepDateFound        NextStepStatus = "date_found"
	NextStepDateInferred     NextStepStatus = "date_inferred"
	NextStepDateUnclear      NextStepStatus = "date_unclear"
	NextStepAwaitingExternal NextStepStatus = "awaiting_external"
	NextStepNoDate           NextStepStatus = "no_date"
	NextStepEmpty            NextStepStatus = "empty"
	NextStepUnparseable      NextStepStatus = "unparseable"
)

// HasConfidentDate reports whether the extracted due date can drive overdue checks.
// date_unclear and awaiting_external never can.
func (s NextStepStatus) HasConfidentDate() bool {
	return s == NextStepDateFound || s == NextStepDateInferred
}

// NextStep is the owner's free-text next step plus its analyzed due date
type NextStep struct {
	Text    string         `json:"text"`
	Status  NextStepStatus `json:"status"`
	DueDate *time.Time     `json:"due_date"`
}

// IsBlank reports whether the next-step text is empty or whitespace
func (n NextStep) IsBlank() bool {
	return strings.TrimSpace(n.Text) == ""
}

// =============================================================================
// Deal Snapshot
// =============================================================================

// StageEntries holds tracked stage-entry timestamps
type StageEntries struct {
	SQLEnteredAt           *time.Time `json:"sql_entered_at"`
	DemoScheduledEnteredAt *time.Time `json:"demo_scheduled_entered_at"`
	DemoCompletedEnteredAt *time.Time `json:"demo_completed_entered_at"`
}

// DealSnapshot is an immutable point-in-time view of one CRM deal
// ⭐ SSOT: the classification core reads deals only through this type
//
// Date-only CRM fields (CloseDate, NextStep.DueDate) are civil midnights in the
// business location. Optional values are nil when unknown.
type DealSnapshot struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	OwnerID   string       `json:"owner_id"`
	Pipeline  PipelineKind `json:"pipeline"`
	StageID   string       `json:"stage_id"`
	StageName string       `json:"stage_name"`

	Amount    *float64  `json:"amount"`
	CloseDate *time.Time `json:"close_date"`
	CreatedAt time.Time  `json:"created_at"`

	LastActivityAt *time.Time `json:"last_activity_at"`
	NextActivityAt *time.Time `json:"next_activity_at"`

	NextStep     NextStep     `json:"next_step"`
	StageEntries StageEntries `json:"stage_entries"`

	LeadSource string `json:"lead_source"`
	Products   string `json:"products"`
	Substage   string `json:"substage"`
	DealType   string `json:"deal_type"`

	SyncedAt time.Time `json:"synced_at"`
}
