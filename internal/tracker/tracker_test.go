package tracker

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/glimpse/internal/category"
	"github.com/runnerr0/glimpse/internal/config"
	"github.com/runnerr0/glimpse/internal/storage"
)

func openTrackerStore(t *testing.T) storage.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTracker_EndToEndPersistsOnShutdown(t *testing.T) {
	store := openTrackerStore(t)
	resolver, err := category.NewResolver(context.Background(), store)
	require.NoError(t, err)

	probe := ProbeFunc(func(context.Context) (WindowInfo, error) {
		return WindowInfo{WindowID: "w1", Title: "inbox", AppName: "Slack"}, nil
	})

	cfg := config.SamplingConfig{
		IntervalMs:      1,
		DebounceSamples: 2,
		MinSessionMs:    0,
		FlushTimeoutMs:  1000,
		FlushRetries:    1,
	}

	tr := New(probe, store, resolver, cfg, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	// Let it accumulate a handful of samples, then shut down.
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	sessions, err := store.SessionsOverlapping(context.Background(),
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 1, "shutdown should close and persist the open session")
	assert.Equal(t, "slack", sessions[0].AppKey)
	assert.Equal(t, "inbox", sessions[0].Title)
	assert.Greater(t, sessions[0].DurationMs, int64(0))
	assert.False(t, tr.Degraded())
}

func TestTracker_SuspendClosesSessionImmediately(t *testing.T) {
	store := openTrackerStore(t)
	resolver, err := category.NewResolver(context.Background(), store)
	require.NoError(t, err)

	probe := ProbeFunc(func(context.Context) (WindowInfo, error) {
		return WindowInfo{AppName: "Code"}, nil
	})

	cfg := config.SamplingConfig{
		IntervalMs:      1,
		DebounceSamples: 2,
		MinSessionMs:    0,
		FlushTimeoutMs:  1000,
		FlushRetries:    1,
	}

	tr := New(probe, store, resolver, cfg, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	tr.Suspend(time.Now())

	// The suspended session flushes without waiting for shutdown.
	require.Eventually(t, func() bool {
		sessions, err := store.SessionsOverlapping(context.Background(),
			time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
		return err == nil && len(sessions) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
