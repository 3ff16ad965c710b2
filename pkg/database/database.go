package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/Atiwari330/hub-agent-sub001/pkg/config"
)

// Dialect is the SQL flavour behind a DB
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB wraps *sql.DB with the dialect it talks to
// ⭐ SSOT: DB connections are created only in this package
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
}

// New opens the database named by cfg.Database.URL and verifies the connection
func New(cfg *config.Config) (*DB, error) {
	db, err := Open(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if db.Dialect == DialectPostgres {
		db.SQL.SetMaxOpenConns(cfg.Database.MaxConns)
		db.SQL.SetMaxIdleConns(cfg.Database.MinConns)
		db.SQL.SetConnMaxLifetime(cfg.Database.MaxConnLifetime)
		db.SQL.SetConnMaxIdleTime(cfg.Database.MaxConnIdleTime)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.SQL.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Open opens a database by URL scheme:
//
//	postgres://... or postgresql://...   pgx stdlib driver
//	sqlite://path/to/file.db             modernc sqlite
//	sqlite::memory:                      in-memory sqlite
func Open(url string) (*DB, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		sqlDB, err := sql.Open("pgx", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return &DB{SQL: sqlDB, Dialect: DialectPostgres}, nil

	case strings.HasPrefix(url, "sqlite:"):
		dsn := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite:"), "//")
		return OpenSQLite(dsn)

	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %q", url)
	}
}

// OpenSQLite opens a SQLite database with WAL, foreign keys and a busy timeout
func OpenSQLite(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// Single connection for SQLite to avoid locking issues.
	// Also keeps ":memory:" databases alive across queries.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	return &DB{SQL: sqlDB, Dialect: DialectSQLite}, nil
}

// Close closes the database
func (db *DB) Close() {
	if db.SQL != nil {
		_ = db.SQL.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// Rebind rewrites "?" placeholders to "$n" for Postgres. SQLite queries pass through.
// Queries must not contain literal question marks.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// =============================================================================
// Migrations
// =============================================================================

// Migrate runs pending migration groups, each in its own transaction.
// Versions are 1-based positions in migrations and tracked in schema_migrations.
func (db *DB) Migrate(ctx context.Context, migrations [][]string) error {
	if _, err := db.SQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmts := range migrations {
		version := i + 1

		var exists int
		if err := db.SQL.QueryRowContext(ctx, db.Rebind("SELECT COUNT(*) FROM schema_migrations WHERE version = ?"), version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := db.SQL.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}

		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", version, err)
			}
		}

		appliedAt := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.ExecContext(ctx, db.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"), version, appliedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version, 0 when none
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := db.SQL.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return int(version.Int64), nil
}

// =============================================================================
// Health
// =============================================================================

// HealthCheck returns detailed health information about the database
func (db *DB) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Healthy:   false,
		Dialect:   db.Dialect,
		Timestamp: time.Now(),
	}

	// Check connection
	start := time.Now()
	if err := db.SQL.PingContext(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)
	status.Stats = db.Stats()

	status.Healthy = true
	return status, nil
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	Dialect      Dialect       `json:"dialect"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	Stats        PoolStats     `json:"stats"`
}

// PoolStats represents connection pool statistics
type PoolStats struct {
	MaxOpenConns int           `json:"max_open_conns"`
	OpenConns    int           `json:"open_conns"`
	InUse        int           `json:"in_use"`
	Idle         int           `json:"idle"`
	WaitCount    int64         `json:"wait_count"`
	WaitDuration time.Duration `json:"wait_duration"`
}

// Stats returns the current pool statistics
func (db *DB) Stats() PoolStats {
	stats := db.SQL.Stats()
	return PoolStats{
		MaxOpenConns: stats.MaxOpenConnections,
		OpenConns:    stats.OpenConnections,
		InUse:        stats.InUse,
		Idle:         stats.Idle,
		WaitCount:    stats.WaitCount,
		WaitDuration: stats.WaitDuration,
	}
}
