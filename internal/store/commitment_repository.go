package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

const commitmentColumns = `id, deal_id, commitment_date, status, created_by, created_at, resolved_at, withdrawn`

// Pending commitments first, then newest
const commitmentOrder = `CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC`

// CreateCommitment stores a new commitment
func (s *Store) CreateCommitment(ctx context.Context, c contracts.HygieneCommitment) error {
	_, err := s.exec(ctx, `
		INSERT INTO hygiene_commitments (`+commitmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DealID, s.encodeDate(c.CommitmentDate), string(c.Status), c.CreatedBy,
		encodeTime(c.CreatedAt), encodeTimePtr(c.ResolvedAt), boolInt(c.Withdrawn),
	)
	if err != nil {
		return fmt.Errorf("create commitment for deal %s: %w", c.DealID, err)
	}
	return nil
}

// LatestCommitment returns the newest pending commitment for a deal, else the
// newest resolved one. Withdrawn commitments are ignored. Nil without error
// when the deal has none.
func (s *Store) LatestCommitment(ctx context.Context, dealID string) (*contracts.HygieneCommitment, error) {
	row := s.queryRow(ctx, `
		SELECT `+commitmentColumns+` FROM hygiene_commitments
		WHERE deal_id = ? AND withdrawn = 0
		ORDER BY `+commitmentOrder+`
		LIMIT 1`, dealID)

	c, err := s.scanCommitment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest commitment for deal %s: %w", dealID, err)
	}
	return c, nil
}

// LatestCommitments returns LatestCommitment for every deal that has one
func (s *Store) LatestCommitments(ctx context.Context) (map[string]contracts.HygieneCommitment, error) {
	rows, err := s.query(ctx, `
		SELECT `+commitmentColumns+` FROM hygiene_commitments
		WHERE withdrawn = 0
		ORDER BY deal_id, `+commitmentOrder)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]contracts.HygieneCommitment)
	for rows.Next() {
		c, err := s.scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		// first row per deal wins
		if _, ok := latest[c.DealID]; !ok {
			latest[c.DealID] = *c
		}
	}
	return latest, rows.Err()
}

// ListPendingCommitments returns every pending commitment, oldest date first
func (s *Store) ListPendingCommitments(ctx context.Context) ([]contracts.HygieneCommitment, error) {
	rows, err := s.query(ctx, `
		SELECT `+commitmentColumns+` FROM hygiene_commitments
		WHERE status = ?
		ORDER BY commitment_date, created_at`, string(contracts.CommitmentPending))
	if err != nil {
		return nil, fmt.Errorf("list pending commitments: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.HygieneCommitment, 0)
	for rows.Next() {
		c, err := s.scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ResolveCommitment moves a pending commitment to completed or escalated.
// Returns ErrNotFound when no pending commitment has that id.
func (s *Store) ResolveCommitment(ctx context.Context, id string, status contracts.CommitmentStatus, at time.Time) error {
	if status == contracts.CommitmentPending {
		return fmt.Errorf("resolve commitment %s: status must be completed or escalated", id)
	}

	res, err := s.exec(ctx, `
		UPDATE hygiene_commitments SET status = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		string(status), encodeTime(at), id, string(contracts.CommitmentPending))
	if err != nil {
		return fmt.Errorf("resolve commitment %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve commitment %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("pending commitment %s: %w", id, ErrNotFound)
	}
	return nil
}

// WithdrawCommitment closes a pending commitment that was cleared by hand while
// the deal still had missing fields. The row is kept but no longer classifies
// the deal. Returns ErrNotFound when no pending commitment has that id.
func (s *Store) WithdrawCommitment(ctx context.Context, id string, at time.Time) error {
	res, err := s.exec(ctx, `
		UPDATE hygiene_commitments SET status = ?, resolved_at = ?, withdrawn = 1
		WHERE id = ? AND status = ?`,
		string(contracts.CommitmentCompleted), encodeTime(at), id, string(contracts.CommitmentPending))
	if err != nil {
		return fmt.Errorf("withdraw commitment %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("withdraw commitment %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("pending commitment %s: %w", id, ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) scanCommitment(row rowScanner) (*contracts.HygieneCommitment, error) {
	var (
		c                 contracts.HygieneCommitment
		date, st, created string
		resolved          sql.NullString
		withdrawn         int
	)
	if err := row.Scan(&c.ID, &c.DealID, &date, &st, &c.CreatedBy, &created, &resolved, &withdrawn); err != nil {
		return nil, err
	}
	c.Withdrawn = withdrawn != 0

	var err error
	c.Status = contracts.CommitmentStatus(st)
	if c.CommitmentDate, err = s.decodeDate(date); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	if c.ResolvedAt, err = decodeTimePtr(resolved); err != nil {
		return nil, err
	}
	return &c, nil
}
