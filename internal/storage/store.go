package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for Glimpse data operations. Sessions are
// append-only: nothing in the engine deletes tracked history.
type Store interface {
	AddSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	SessionsOverlapping(ctx context.Context, from, to time.Time) ([]Session, error)
	DetectedApps(ctx context.Context) ([]string, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListOverrides(ctx context.Context) (map[string]string, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, id, description, color string) error
	DeleteCategory(ctx context.Context, id string) error
	SetOverride(ctx context.Context, appKey, categoryID string) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements for the hot write/read paths
	insertSession *sql.Stmt
	getSession    *sql.Stmt
	setOverride   *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertSession, err = s.db.Prepare(`
		INSERT INTO sessions (id, title, app_key, started_at, ended_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getSession, err = s.db.Prepare(`
		SELECT id, title, app_key, started_at, duration_ms
		FROM sessions WHERE id = ?
	`)
	if err != nil {
		return err
	}

	s.setOverride, err = s.db.Prepare(`
		INSERT INTO overrides (app_key, category_id, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(app_key) DO UPDATE SET
			category_id = excluded.category_id,
			updated_at  = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	return nil
}

// timestampFormat is the canonical column format: RFC3339 UTC with a
// fixed-width nanosecond fraction. The width matters: lexicographic order
// on this format matches chronological order, which the interval queries
// rely on. RFC3339Nano would trim trailing fraction zeros and break that
// for sub-second instants.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// AddSession appends a closed session to the log. The session's ID is
// populated automatically if empty. A nil error means the row is durable.
func (s *SQLiteStore) AddSession(ctx context.Context, session *Session) error {
	if session.AppKey == "" {
		return fmt.Errorf("session app key is empty")
	}
	if session.DurationMs < 0 {
		return fmt.Errorf("session duration is negative: %d", session.DurationMs)
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	_, err := s.insertSession.ExecContext(ctx,
		session.ID, session.Title, session.AppKey,
		formatTimestamp(session.StartedAt), formatTimestamp(session.EndedAt()),
		session.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a single session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	var startedStr string

	err := s.getSession.QueryRowContext(ctx, id).Scan(
		&sess.ID, &sess.Title, &sess.AppKey, &startedStr, &sess.DurationMs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s not found", id)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess.StartedAt, err = parseTimestamp(startedStr)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// SessionsOverlapping returns every session whose [startedAt, endedAt)
// interval intersects [from, to), ordered by start time.
func (s *SQLiteStore) SessionsOverlapping(ctx context.Context, from, to time.Time) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, app_key, started_at, duration_ms
		FROM sessions
		WHERE started_at < ? AND ended_at > ?
		ORDER BY started_at ASC
	`, formatTimestamp(to), formatTimestamp(from))
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedStr string
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.AppKey, &startedStr, &sess.DurationMs); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt, err = parseTimestamp(startedStr)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Return empty slice rather than nil
	if sessions == nil {
		sessions = []Session{}
	}

	return sessions, nil
}

// DetectedApps returns every distinct app key the sampler has ever recorded,
// sorted alphabetically.
func (s *SQLiteStore) DetectedApps(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT app_key FROM sessions ORDER BY app_key ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("query detected apps: %w", err)
	}
	defer rows.Close()

	apps := []string{}
	for rows.Next() {
		var app string
		if err := rows.Scan(&app); err != nil {
			return nil, fmt.Errorf("scan app key: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// ListCategories returns all categories with their member app lists populated.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, color, is_custom FROM categories ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	index := map[string]int{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Description, &c.Color, &c.IsCustom); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.MemberApps = []string{}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := s.db.QueryContext(ctx,
		"SELECT category_id, app_key FROM category_apps ORDER BY app_key ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var categoryID, appKey string
		if err := memberRows.Scan(&categoryID, &appKey); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		if i, ok := index[categoryID]; ok {
			categories[i].MemberApps = append(categories[i].MemberApps, appKey)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	if categories == nil {
		categories = []Category{}
	}

	return categories, nil
}

// ListOverrides returns the full appKey → categoryID override table.
func (s *SQLiteStore) ListOverrides(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT app_key, category_id FROM overrides")
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	overrides := map[string]string{}
	for rows.Next() {
		var appKey, categoryID string
		if err := rows.Scan(&appKey, &categoryID); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		overrides[appKey] = categoryID
	}

	return overrides, rows.Err()
}

// CreateCategory inserts a category row and any initial memberships in a
// single transaction. Uniqueness and naming rules are the resolver's job;
// the store only guarantees atomicity.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		"INSERT INTO categories (id, description, color, is_custom) VALUES (?, ?, ?, ?)",
		category.ID, category.Description, category.Color, category.IsCustom,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	for _, app := range category.MemberApps {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO category_apps (category_id, app_key) VALUES (?, ?)",
			category.ID, app,
		)
		if err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateCategory mutates a category's description and color in place.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, id, description, color string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET description = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		description, color, id,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("category %s not found", id)
	}

	return nil
}

// DeleteCategory removes a category, its membership rows, and every override
// pointing at it, in one transaction. Apps that referenced it fall back to
// the resolution chain on the next query.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM overrides WHERE category_id = ?", id); err != nil {
		return fmt.Errorf("delete overrides: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM category_apps WHERE category_id = ?", id); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("category %s not found", id)
	}

	return tx.Commit()
}

// SetOverride upserts the per-app category override.
func (s *SQLiteStore) SetOverride(ctx context.Context, appKey, categoryID string) error {
	if _, err := s.setOverride.ExecContext(ctx, appKey, categoryID); err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	return nil
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(duration_ms), 0), COUNT(DISTINCT app_key) FROM sessions",
	).Scan(&stats.TotalSessions, &stats.TotalTrackedMs, &stats.DistinctApps)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalSessions > 0 {
		var oldestStr, newestStr string
		err = s.db.QueryRowContext(ctx,
			"SELECT MIN(started_at), MAX(ended_at) FROM sessions",
		).Scan(&oldestStr, &newestStr)
		if err != nil {
			return nil, fmt.Errorf("session time range: %w", err)
		}
		stats.OldestSession, _ = parseTimestamp(oldestStr)
		stats.NewestSession, _ = parseTimestamp(newestStr)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT app_key, SUM(duration_ms) AS total
		FROM sessions GROUP BY app_key ORDER BY total DESC LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top apps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var at AppTime
		if err := rows.Scan(&at.AppKey, &at.TotalMs); err != nil {
			return nil, err
		}
		stats.TopApps = append(stats.TopApps, at)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed — that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertSession, s.getSession, s.setOverride}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
