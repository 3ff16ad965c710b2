package contracts

import "time"

// HygieneField names a deal property that a pipeline can require
type HygieneField string

const (
	FieldDealName   HygieneField = "dealname"
	FieldAmount     HygieneField = "amount"
	FieldCloseDate  HygieneField = "closedate"
	FieldOwner      HygieneField = "hubspot_owner_id"
	FieldLeadSource HygieneField = "lead_source"
	FieldProducts   HygieneField = "product_s"
	FieldSubstage   HygieneField = "deal_substage"
	FieldDealType   HygieneField = "dealtype"
)

// HygieneFields lists every field the hygiene check knows how to read
func HygieneFields() []HygieneField {
	return []HygieneField{
		FieldDealName, FieldAmount, FieldCloseDate, FieldOwner,
		FieldLeadSource, FieldProducts, FieldSubstage, FieldDealType,
	}
}

// HygieneRequirement pairs a required field with its human label
type HygieneRequirement struct {
	Field HygieneField `json:"field" yaml:"field"`
	Label string       `json:"label" yaml:"label"`
}

// CommitmentStatus is the stored lifecycle of a hygiene commitment
type CommitmentStatus string

const (
	CommitmentPending   CommitmentStatus = "pending"
	CommitmentCompleted CommitmentStatus = "completed"
	CommitmentEscalated CommitmentStatus = "escalated"
)

// HygieneCommitment is an owner's promise to fill missing fields by a date
type HygieneCommitment struct {
	ID             string           `json:"id"`
	DealID         string           `json:"deal_id"`
	CommitmentDate time.Time        `json:"commitment_date"` // civil date, midnight in business location
	Status         CommitmentStatus `json:"status"`
	CreatedBy      string           `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	ResolvedAt     *time.Time       `json:"resolved_at"`
	Withdrawn      bool             `json:"withdrawn,omitempty"` // cleared by hand before the fields were complete
}
