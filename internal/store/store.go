package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/pkg/database"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Fixed-width UTC layout so stored timestamps sort lexicographically
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists the CRM mirror and hygiene commitments
// ⭐ SSOT: the only package that writes SQL for deals, engagements and commitments
//
// Store implements contracts.DealRepository, contracts.EngagementRepository
// and contracts.CommitmentRepository.
type Store struct {
	db  *database.DB
	loc *time.Location // business location for civil dates
}

// New creates a store. Civil dates are read back as midnight in loc.
func New(db *database.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{db: db, loc: loc}
}

// Migrate applies the schema
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.Migrate(ctx, migrations); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}

// DB returns the underlying database
func (s *Store) DB() *database.DB {
	return s.db
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.SQL.ExecContext(ctx, s.db.Rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.SQL.QueryContext(ctx, s.db.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.SQL.QueryRowContext(ctx, s.db.Rebind(query), args...)
}

// =============================================================================
// Column encoding
// =============================================================================

func encodeTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func encodeTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp %q: %w", s, err)
	}
	return t, nil
}

func decodeTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := decodeTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) encodeDate(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

func (s *Store) encodeDatePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: s.encodeDate(*t), Valid: true}
}

func (s *Store) decodeDate(str string) (time.Time, error) {
	return calendar.ParseDate(str, s.loc)
}

func (s *Store) decodeDatePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := s.decodeDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
