package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: persistence interfaces for the CRM mirror live here

// DealFilter narrows a deal listing. Zero values mean "any".
type DealFilter struct {
	Pipeline PipelineKind
	OwnerID  string
}

// DealRepository stores mirrored deal snapshots
type DealRepository interface {
	UpsertDeals(ctx context.Context, deals []DealSnapshot) error
	// SyncDeals upserts a full pull and removes deals not seen since syncedAt.
	// Returns how many were removed.
	SyncDeals(ctx context.Context, deals []DealSnapshot, syncedAt time.Time) (int, error)
	GetDeal(ctx context.Context, id string) (*DealSnapshot, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]DealSnapshot, error)
}

// EngagementRepository stores calls, emails and meetings per deal
type EngagementRepository interface {
	ReplaceEngagements(ctx context.Context, dealID string, engagements Engagements) error
	GetEngagements(ctx context.Context, dealID string) (Engagements, error)
}

// CommitmentRepository owns the hygiene commitment lifecycle
type CommitmentRepository interface {
	CreateCommitment(ctx context.Context, c HygieneCommitment) error
	// LatestCommitment returns the commitment the classifier should see for a deal:
	// the newest pending one, else the newest resolved one that was not withdrawn.
	// Nil when none exist.
	LatestCommitment(ctx context.Context, dealID string) (*HygieneCommitment, error)
	LatestCommitments(ctx context.Context) (map[string]HygieneCommitment, error)
	ListPendingCommitments(ctx context.Context) ([]HygieneCommitment, error)
	ResolveCommitment(ctx context.Context, id string, status CommitmentStatus, at time.Time) error
	// WithdrawCommitment closes a pending commitment without counting it as a fix;
	// LatestCommitment and LatestCommitments skip withdrawn rows.
	WithdrawCommitment(ctx context.Context, id string, at time.Time) error
}
