package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestOpen_SQLite(t *testing.T) {
	db := openMemory(t)
	assert.Equal(t, DialectSQLite, db.Dialect)
	require.NoError(t, db.Ping(context.Background()))

	var fk int
	require.NoError(t, db.SQL.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open("mysql://localhost/db")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	lite := &DB{Dialect: DialectSQLite}

	q := "SELECT * FROM deals WHERE pipeline = ? AND owner_id = ?"
	assert.Equal(t, "SELECT * FROM deals WHERE pipeline = $1 AND owner_id = $2", pg.Rebind(q))
	assert.Equal(t, q, lite.Rebind(q))
}

func TestMigrate(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	migrations := [][]string{
		{`CREATE TABLE a (id TEXT PRIMARY KEY)`},
		{`CREATE TABLE b (id TEXT PRIMARY KEY)`, `CREATE INDEX idx_b ON b (id)`},
	}

	// Run migrations twice, second run is a no-op
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Migrate(ctx, migrations), "run %d", i+1)
	}

	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	_, err = db.SQL.Exec("INSERT INTO b (id) VALUES ('x')")
	assert.NoError(t, err)
}

func TestMigrate_RollsBackFailedGroup(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	err := db.Migrate(ctx, [][]string{
		{`CREATE TABLE ok (id TEXT)`},
		{`CREATE TABLE half (id TEXT)`, `THIS IS NOT SQL`},
	})
	require.Error(t, err)

	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	var n int
	require.NoError(t, db.SQL.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'half'").Scan(&n))
	assert.Zero(t, n)
}

func TestHealthCheck(t *testing.T) {
	db := openMemory(t)

	status, err := db.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Equal(t, DialectSQLite, status.Dialect)
	assert.Equal(t, 1, status.Stats.MaxOpenConns)
}

func TestOpen_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := Open(url)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Equal(t, DialectPostgres, db.Dialect)
	assert.NoError(t, db.Ping(ctx))
}
