package commitment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/hygiene"
	"github.com/Atiwari330/hub-agent-sub001/internal/store"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

var (
	ErrInvalidDate         = errors.New("commitment date must be YYYY-MM-DD")
	ErrDateInPast          = errors.New("commitment date is in the past")
	ErrPendingExists       = errors.New("deal already has a pending commitment")
	ErrNoPendingCommitment = errors.New("deal has no pending commitment")
)

// Repository is the persistence the workflow needs
type Repository interface {
	contracts.DealRepository
	contracts.CommitmentRepository
}

// Service owns the write side of hygiene commitments
// ⭐ SSOT: commitments are created and resolved only here
type Service struct {
	repo    Repository
	checker *hygiene.Checker
	cal     calendar.Calendar
	logger  *logger.Logger
}

// NewService creates a commitment service
func NewService(repo Repository, checker *hygiene.Checker, cal calendar.Calendar, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		checker: checker,
		cal:     cal,
		logger:  log.WithField("module", "commitment"),
	}
}

// CreateRequest is an owner's promise to complete a deal's fields
type CreateRequest struct {
	CommitmentDate string `json:"commitment_date"`
	CreatedBy      string `json:"created_by"`
}

// Create records a new pending commitment. The date may be today but not earlier.
// A previous pending commitment whose date has passed is escalated and replaced;
// one still in force blocks the new commitment.
func (s *Service) Create(ctx context.Context, dealID string, req CreateRequest) (contracts.HygieneCommitment, error) {
	date, err := calendar.ParseDate(req.CommitmentDate, s.cal.Location())
	if err != nil || len(strings.TrimSpace(req.CommitmentDate)) != len("2006-01-02") {
		return contracts.HygieneCommitment{}, ErrInvalidDate
	}
	if s.cal.IsPastDate(date) {
		return contracts.HygieneCommitment{}, ErrDateInPast
	}

	if _, err := s.repo.GetDeal(ctx, dealID); err != nil {
		return contracts.HygieneCommitment{}, err
	}

	now := s.cal.Now()
	existing, err := s.repo.LatestCommitment(ctx, dealID)
	if err != nil {
		return contracts.HygieneCommitment{}, err
	}
	if existing != nil && existing.Status == contracts.CommitmentPending {
		if !s.cal.IsPastDate(existing.CommitmentDate) {
			return contracts.HygieneCommitment{}, ErrPendingExists
		}
		if err := s.repo.ResolveCommitment(ctx, existing.ID, contracts.CommitmentEscalated, now); err != nil {
			return contracts.HygieneCommitment{}, fmt.Errorf("escalate missed commitment: %w", err)
		}
	}

	c := contracts.HygieneCommitment{
		ID:             uuid.NewString(),
		DealID:         dealID,
		CommitmentDate: date,
		Status:         contracts.CommitmentPending,
		CreatedBy:      strings.TrimSpace(req.CreatedBy),
		CreatedAt:      now,
	}
	if err := s.repo.CreateCommitment(ctx, c); err != nil {
		return contracts.HygieneCommitment{}, err
	}

	s.logger.WithDeal(dealID).WithFields(map[string]interface{}{
		"commitment_id":   c.ID,
		"commitment_date": s.cal.FormatDate(date),
		"created_by":      c.CreatedBy,
	}).Info("Commitment created")

	return c, nil
}

// ClearOutcome says how a manual clear closed the pending commitment
type ClearOutcome string

const (
	// ClearCompleted: the deal's fields are complete, the commitment was kept
	ClearCompleted ClearOutcome = "completed"
	// ClearWithdrawn: fields are still missing, so the commitment no longer
	// classifies the deal and it falls back to its no-commitment status
	ClearWithdrawn ClearOutcome = "withdrawn"
)

// Clear closes the deal's pending commitment. It is completed when the deal is
// compliant and withdrawn otherwise, so a clear never reads as a later regression.
func (s *Service) Clear(ctx context.Context, dealID string) (ClearOutcome, error) {
	existing, err := s.repo.LatestCommitment(ctx, dealID)
	if err != nil {
		return "", err
	}
	if existing == nil || existing.Status != contracts.CommitmentPending {
		return "", ErrNoPendingCommitment
	}

	deal, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return "", err
	}

	now := s.cal.Now()
	outcome := ClearCompleted
	if s.checker.Check(*deal).IsCompliant {
		err = s.repo.ResolveCommitment(ctx, existing.ID, contracts.CommitmentCompleted, now)
	} else {
		outcome = ClearWithdrawn
		err = s.repo.WithdrawCommitment(ctx, existing.ID, now)
	}
	if err != nil {
		return "", err
	}

	s.logger.WithDeal(dealID).WithFields(map[string]interface{}{
		"commitment_id": existing.ID,
		"outcome":       string(outcome),
	}).Info("Commitment cleared")
	return outcome, nil
}

// ReconcileResult counts what a reconcile run changed
type ReconcileResult struct {
	Checked   int `json:"checked"`
	Completed int `json:"completed"`
	Escalated int `json:"escalated"`
	Skipped   int `json:"skipped"`
}

// Reconcile resolves pending commitments: completed once the deal is compliant,
// escalated once the commitment date has passed. Deals no longer in the
// mirror are skipped.
func (s *Service) Reconcile(ctx context.Context) (ReconcileResult, error) {
	pending, err := s.repo.ListPendingCommitments(ctx)
	if err != nil {
		return ReconcileResult{}, err
	}

	var result ReconcileResult
	now := s.cal.Now()

	for _, c := range pending {
		result.Checked++

		deal, err := s.repo.GetDeal(ctx, c.DealID)
		if errors.Is(err, store.ErrNotFound) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, err
		}

		var status contracts.CommitmentStatus
		switch {
		case s.checker.Check(*deal).IsCompliant:
			status = contracts.CommitmentCompleted
		case s.cal.IsPastDate(c.CommitmentDate):
			status = contracts.CommitmentEscalated
		default:
			continue
		}

		if err := s.repo.ResolveCommitment(ctx, c.ID, status, now); err != nil {
			return result, err
		}
		if status == contracts.CommitmentCompleted {
			result.Completed++
		} else {
			result.Escalated++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"checked":   result.Checked,
		"completed": result.Completed,
		"escalated": result.Escalated,
		"skipped":   result.Skipped,
	}).Info("Commitments reconciled")

	return result, nil
}

