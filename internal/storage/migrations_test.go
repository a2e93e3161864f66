package storage

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner_FreshDB(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	err := runner.Run()
	require.NoError(t, err)

	expectedTables := []string{
		"sessions",
		"categories",
		"category_apps",
		"overrides",
		"schema_migrations",
	}
	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationRunner_IndexesCreated(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	expectedIndexes := []string{
		"idx_sessions_started",
		"idx_sessions_ended",
		"idx_sessions_interval",
		"idx_sessions_app",
		"idx_category_apps_app",
		"idx_overrides_cat",
	}
	for _, idx := range expectedIndexes {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
		assert.Equal(t, idx, name)
	}
}

func TestMigrationRunner_SeedsBuiltinCategories(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM categories WHERE is_custom = 0").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(BuiltinCategories()), count)

	// The fallback category must always exist.
	var id string
	err = db.QueryRow("SELECT id FROM categories WHERE id = ?", MiscellaneousID).Scan(&id)
	require.NoError(t, err)
	assert.Equal(t, MiscellaneousID, id)

	// Spot-check seeded memberships
	var memberCount int
	err = db.QueryRow(
		"SELECT COUNT(*) FROM category_apps WHERE category_id = 'browsing'",
	).Scan(&memberCount)
	require.NoError(t, err)
	assert.Greater(t, memberCount, 5, "browsing should ship with several member apps")
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	// Run migrations twice
	require.NoError(t, runner.Run())
	require.NoError(t, runner.Run())

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "should have exactly 1 migration recorded after double-run")

	err = db.QueryRow("SELECT COUNT(*) FROM categories WHERE is_custom = 0").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(BuiltinCategories()), count, "builtins should not be duplicated on re-run")
}

func TestMigrationRunner_SchemaMigrationsTracking(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations WHERE version = 1").Scan(&version, &name)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, "initial_schema", name)
}

func TestMigrationRunner_WALMode(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	var journalMode string
	err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	require.NoError(t, err)
	// In-memory databases use "memory" journal mode; WAL is set but only
	// takes effect on file-backed DBs. We verify the pragma was executed
	// by checking it's either "wal" or "memory".
	assert.Contains(t, []string{"wal", "memory"}, journalMode,
		"journal_mode should be wal (file) or memory (in-memory)")
}

func TestMigrationRunner_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	var fk int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign_keys should be enabled")
}

func TestMigrationRunner_ForeignKeyEnforcement(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	// A membership for a non-existent category should fail
	_, err := db.Exec(
		"INSERT INTO category_apps (category_id, app_key) VALUES ('nonexistent', 'code')",
	)
	assert.Error(t, err, "foreign key constraint should prevent orphan membership rows")
}

func TestMigrationRunner_SessionsTableColumns(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	// Insert a full session row to verify all columns
	_, err := db.Exec(`
		INSERT INTO sessions (id, title, app_key, started_at, ended_at, duration_ms)
		VALUES ('test-uuid', 'main.go - VS Code', 'code', '2024-03-01T09:00:00Z', '2024-03-01T09:30:00Z', 1800000)
	`)
	require.NoError(t, err)

	var id, title, appKey string
	var durationMs int64
	err = db.QueryRow("SELECT id, title, app_key, duration_ms FROM sessions WHERE id = 'test-uuid'").
		Scan(&id, &title, &appKey, &durationMs)
	require.NoError(t, err)
	assert.Equal(t, "test-uuid", id)
	assert.Equal(t, "main.go - VS Code", title)
	assert.Equal(t, "code", appKey)
	assert.Equal(t, int64(1800000), durationMs)
}

func TestMigrationRunner_RejectsNegativeDuration(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	_, err := db.Exec(`
		INSERT INTO sessions (id, title, app_key, started_at, ended_at, duration_ms)
		VALUES ('bad', '', 'code', '2024-03-01T09:00:00Z', '2024-03-01T09:00:00Z', -5)
	`)
	assert.Error(t, err, "CHECK constraint should reject negative durations")
}
