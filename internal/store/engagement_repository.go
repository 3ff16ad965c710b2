package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

// ReplaceEngagements swaps a deal's calls, emails and meetings for the given set
func (s *Store) ReplaceEngagements(ctx context.Context, dealID string, eng contracts.Engagements) error {
	tx, err := s.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace engagements: %w", err)
	}

	txExec := func(query string, args ...any) error {
		_, err := tx.ExecContext(ctx, s.db.Rebind(query), args...)
		return err
	}

	for _, table := range []string{"calls", "emails", "meetings"} {
		if err := txExec(`DELETE FROM `+table+` WHERE deal_id = ?`, dealID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear %s for deal %s: %w", table, dealID, err)
		}
	}

	for _, c := range eng.Calls {
		if err := txExec(`INSERT INTO calls (deal_id, id, occurred_at, direction, disposition) VALUES (?, ?, ?, ?, ?)`,
			dealID, c.ID, encodeTime(c.Timestamp), c.Direction, c.Disposition); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert call %s: %w", c.ID, err)
		}
	}
	for _, e := range eng.Emails {
		if err := txExec(`INSERT INTO emails (deal_id, id, occurred_at, direction, from_email, subject) VALUES (?, ?, ?, ?, ?, ?)`,
			dealID, e.ID, encodeTime(e.Timestamp), string(e.Direction), e.FromEmail, e.Subject); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert email %s: %w", e.ID, err)
		}
	}
	for _, m := range eng.Meetings {
		if err := txExec(`INSERT INTO meetings (deal_id, id, created_at, start_time, title) VALUES (?, ?, ?, ?, ?)`,
			dealID, m.ID, encodeTime(m.CreatedAt), encodeTimePtr(m.StartTime), m.Title); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert meeting %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace engagements: %w", err)
	}
	return nil
}

// GetEngagements returns a deal's engagements ordered by time. Unknown deals yield empty lists.
func (s *Store) GetEngagements(ctx context.Context, dealID string) (contracts.Engagements, error) {
	eng := contracts.Engagements{
		Calls:    []contracts.Call{},
		Emails:   []contracts.Email{},
		Meetings: []contracts.Meeting{},
	}

	// Calls
	rows, err := s.query(ctx, `SELECT id, occurred_at, direction, disposition FROM calls WHERE deal_id = ? ORDER BY occurred_at`, dealID)
	if err != nil {
		return eng, fmt.Errorf("query calls: %w", err)
	}
	for rows.Next() {
		c := contracts.Call{DealID: dealID}
		var ts string
		if err := rows.Scan(&c.ID, &ts, &c.Direction, &c.Disposition); err != nil {
			rows.Close()
			return eng, err
		}
		if c.Timestamp, err = decodeTime(ts); err != nil {
			rows.Close()
			return eng, err
		}
		eng.Calls = append(eng.Calls, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eng, err
	}

	// Emails
	rows, err = s.query(ctx, `SELECT id, occurred_at, direction, from_email, subject FROM emails WHERE deal_id = ? ORDER BY occurred_at`, dealID)
	if err != nil {
		return eng, fmt.Errorf("query emails: %w", err)
	}
	for rows.Next() {
		e := contracts.Email{DealID: dealID}
		var ts, dir string
		if err := rows.Scan(&e.ID, &ts, &dir, &e.FromEmail, &e.Subject); err != nil {
			rows.Close()
			return eng, err
		}
		e.Direction = contracts.EmailDirection(dir)
		if e.Timestamp, err = decodeTime(ts); err != nil {
			rows.Close()
			return eng, err
		}
		eng.Emails = append(eng.Emails, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eng, err
	}

	// Meetings
	rows, err = s.query(ctx, `SELECT id, created_at, start_time, title FROM meetings WHERE deal_id = ? ORDER BY created_at`, dealID)
	if err != nil {
		return eng, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m := contracts.Meeting{DealID: dealID}
		var created string
		var start sql.NullString
		if err := rows.Scan(&m.ID, &created, &start, &m.Title); err != nil {
			return eng, err
		}
		if m.CreatedAt, err = decodeTime(created); err != nil {
			return eng, err
		}
		if m.StartTime, err = decodeTimePtr(start); err != nil {
			return eng, err
		}
		eng.Meetings = append(eng.Meetings, m)
	}
	return eng, rows.Err()
}
