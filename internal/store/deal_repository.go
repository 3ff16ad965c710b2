package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

const dealColumns = `id, name, owner_id, pipeline, stage_id, stage_name, amount, close_date, created_at,
	last_activity_at, next_activity_at, next_step_text, next_step_status, next_step_due_date,
	sql_entered_at, demo_scheduled_entered_at, demo_completed_entered_at,
	lead_source, products, substage, deal_type, synced_at`

const upsertDealSQL = `
	INSERT INTO deals (` + dealColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		owner_id = excluded.owner_id,
		pipeline = excluded.pipeline,
		stage_id = excluded.stage_id,
		stage_name = excluded.stage_name,
		amount = excluded.amount,
		close_date = excluded.close_date,
		created_at = excluded.created_at,
		last_activity_at = excluded.last_activity_at,
		next_activity_at = excluded.next_activity_at,
		next_step_text = excluded.next_step_text,
		next_step_status = excluded.next_step_status,
		next_step_due_date = excluded.next_step_due_date,
		sql_entered_at = excluded.sql_entered_at,
		demo_scheduled_entered_at = excluded.demo_scheduled_entered_at,
		demo_completed_entered_at = excluded.demo_completed_entered_at,
		lead_source = excluded.lead_source,
		products = excluded.products,
		substage = excluded.substage,
		deal_type = excluded.deal_type,
		synced_at = excluded.synced_at
`

// UpsertDeals inserts or replaces deal snapshots in one transaction
func (s *Store) UpsertDeals(ctx context.Context, deals []contracts.DealSnapshot) error {
	if len(deals) == 0 {
		return nil
	}
	return s.inTx(ctx, "upsert deals", func(tx *sql.Tx) error {
		return s.upsertDeals(ctx, tx, deals)
	})
}

// SyncDeals makes the deals table mirror one full CRM pull: it upserts deals and
// then removes every deal (with its engagements) whose synced_at is older than
// syncedAt, all in one transaction. Commitments are kept as history.
func (s *Store) SyncDeals(ctx context.Context, deals []contracts.DealSnapshot, syncedAt time.Time) (int, error) {
	var removed int64
	err := s.inTx(ctx, "sync deals", func(tx *sql.Tx) error {
		if err := s.upsertDeals(ctx, tx, deals); err != nil {
			return err
		}

		cutoff := encodeTime(syncedAt)
		for _, table := range []string{"calls", "emails", "meetings"} {
			_, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM `+table+
				` WHERE deal_id IN (SELECT id FROM deals WHERE synced_at < ?)`), cutoff)
			if err != nil {
				return fmt.Errorf("prune %s: %w", table, err)
			}
		}

		res, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM deals WHERE synced_at < ?`), cutoff)
		if err != nil {
			return fmt.Errorf("prune deals: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return int(removed), err
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", op, err)
	}
	return nil
}

func (s *Store) upsertDeals(ctx context.Context, tx *sql.Tx, deals []contracts.DealSnapshot) error {
	if len(deals) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, s.db.Rebind(upsertDealSQL))
	if err != nil {
		return fmt.Errorf("prepare upsert deals: %w", err)
	}
	defer stmt.Close()

	for _, d := range deals {
		var amount sql.NullFloat64
		if d.Amount != nil {
			amount = sql.NullFloat64{Float64: *d.Amount, Valid: true}
		}

		_, err := stmt.ExecContext(ctx,
			d.ID, d.Name, d.OwnerID, string(d.Pipeline), d.StageID, d.StageName,
			amount, s.encodeDatePtr(d.CloseDate), encodeTime(d.CreatedAt),
			encodeTimePtr(d.LastActivityAt), encodeTimePtr(d.NextActivityAt),
			d.NextStep.Text, string(d.NextStep.Status), s.encodeDatePtr(d.NextStep.DueDate),
			encodeTimePtr(d.StageEntries.SQLEnteredAt),
			encodeTimePtr(d.StageEntries.DemoScheduledEnteredAt),
			encodeTimePtr(d.StageEntries.DemoCompletedEnteredAt),
			d.LeadSource, d.Products, d.Substage, d.DealType, encodeTime(d.SyncedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert deal %s: %w", d.ID, err)
		}
	}
	return nil
}

// GetDeal returns one deal or ErrNotFound
func (s *Store) GetDeal(ctx context.Context, id string) (*contracts.DealSnapshot, error) {
	row := s.queryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id)

	deal, err := s.scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// ListDeals returns deals matching the filter, ordered by id
func (s *Store) ListDeals(ctx context.Context, filter contracts.DealFilter) ([]contracts.DealSnapshot, error) {
	var (
		where []string
		args  []any
	)
	if filter.Pipeline != "" {
		where = append(where, "pipeline = ?")
		args = append(args, string(filter.Pipeline))
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}

	query := `SELECT ` + dealColumns + ` FROM deals`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	deals := make([]contracts.DealSnapshot, 0)
	for rows.Next() {
		deal, err := s.scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *deal)
	}
	return deals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanDeal(row rowScanner) (*contracts.DealSnapshot, error) {
	var (
		d                                           contracts.DealSnapshot
		pipeline, nsStatus, createdAt, syncedAt     string
		amount                                      sql.NullFloat64
		closeDate, lastActivity, nextActivity       sql.NullString
		nsDue, sqlEntered, demoSched, demoCompleted sql.NullString
	)

	err := row.Scan(
		&d.ID, &d.Name, &d.OwnerID, &pipeline, &d.StageID, &d.StageName,
		&amount, &closeDate, &createdAt, &lastActivity, &nextActivity,
		&d.NextStep.Text, &nsStatus, &nsDue,
		&sqlEntered, &demoSched, &demoCompleted,
		&d.LeadSource, &d.Products, &d.Substage, &d.DealType, &syncedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Pipeline = contracts.PipelineKind(pipeline)
	d.NextStep.Status = contracts.NextStepStatus(nsStatus)
	if amount.Valid {
		v := amount.Float64
		d.Amount = &v
	}

	if d.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if d.SyncedAt, err = decodeTime(syncedAt); err != nil {
		return nil, err
	}
	if d.CloseDate, err = s.decodeDatePtr(closeDate); err != nil {
		return nil, err
	}
	if d.NextStep.DueDate, err = s.decodeDatePtr(nsDue); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{lastActivity, &d.LastActivityAt},
		{nextActivity, &d.NextActivityAt},
		{sqlEntered, &d.StageEntries.SQLEnteredAt},
		{demoSched, &d.StageEntries.DemoScheduledEnteredAt},
		{demoCompleted, &d.StageEntries.DemoCompletedEnteredAt},
	} {
		if *f.dst, err = decodeTimePtr(f.src); err != nil {
			return nil, err
		}
	}

	return &d, nil
}
