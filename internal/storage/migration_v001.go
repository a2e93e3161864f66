package storage

import "database/sql"

// migrateV001 creates the initial Glimpse schema: the append-only session
// log, the category tables, and the per-app override table, then seeds the
// built-in categories. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			app_key     TEXT NOT NULL,
			started_at  DATETIME NOT NULL,
			ended_at    DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL CHECK (duration_ms >= 0),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id          TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			color       TEXT NOT NULL,
			is_custom   BOOLEAN NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS category_apps (
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			app_key     TEXT NOT NULL,
			PRIMARY KEY (category_id, app_key)
		)`,

		`CREATE TABLE IF NOT EXISTS overrides (
			app_key     TEXT PRIMARY KEY,
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_sessions_started  ON sessions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended    ON sessions(ended_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_interval ON sessions(started_at, ended_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_app      ON sessions(app_key)`,
		`CREATE INDEX IF NOT EXISTS idx_category_apps_app ON category_apps(app_key)`,
		`CREATE INDEX IF NOT EXISTS idx_overrides_cat     ON overrides(category_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return seedBuiltinCategories(tx)
}

// seedBuiltinCategories inserts the shipped category catalog and its default
// app memberships. Uses INSERT OR IGNORE so re-running is safe.
func seedBuiltinCategories(tx *sql.Tx) error {
	const insertCategory = `INSERT OR IGNORE INTO categories (id, description, color, is_custom) VALUES (?, ?, ?, 0)`
	const insertMember = `INSERT OR IGNORE INTO category_apps (category_id, app_key) VALUES (?, ?)`

	for _, c := range BuiltinCategories() {
		if _, err := tx.Exec(insertCategory, c.ID, c.Description, c.Color); err != nil {
			return err
		}
		for _, app := range c.MemberApps {
			if _, err := tx.Exec(insertMember, c.ID, app); err != nil {
				return err
			}
		}
	}

	return nil
}
