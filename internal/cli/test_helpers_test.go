package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/glimpse/internal/aggregate"
	"github.com/runnerr0/glimpse/internal/api"
	"github.com/runnerr0/glimpse/internal/category"
	"github.com/runnerr0/glimpse/internal/config"
	"github.com/runnerr0/glimpse/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// setupCLITest opens a store in a temp directory through the same path the
// commands use, and wires an engine on top of it.
func setupCLITest(t *testing.T) (*api.Engine, *storage.SQLiteStore, *sql.DB, *config.Config) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Storage.Path = t.TempDir()

	store, db, err := openStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		db.Close()
	})

	resolver, err := category.NewResolver(context.Background(), store)
	require.NoError(t, err)

	engine := api.NewEngine(store, resolver, aggregate.New(store, resolver))
	return engine, store, db, cfg
}

// seedCLISession inserts a session starting at the RFC3339 instant.
func seedCLISession(t *testing.T, store *storage.SQLiteStore, app, start string, minutes int) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	require.NoError(t, store.AddSession(context.Background(), &storage.Session{
		AppKey:     app,
		StartedAt:  ts,
		DurationMs: int64(minutes) * 60 * 1000,
	}))
	return ts
}
