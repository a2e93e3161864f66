package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/glimpse/internal/storage"
)

// flakyStore fails AddSession a configurable number of times, then
// succeeds. Only the session write path is exercised here.
type flakyStore struct {
	storage.Store

	mu       sync.Mutex
	failures int
	added    []*storage.Session
}

func (s *flakyStore) AddSession(_ context.Context, session *storage.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return assert.AnError
	}
	s.added = append(s.added, session)
	return nil
}

func (s *flakyStore) sessions() []*storage.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.Session, len(s.added))
	copy(out, s.added)
	return out
}

func newTestFlusher(store storage.Store, retries int) *Flusher {
	return NewFlusher(store, time.Second, retries, discardLogger())
}

func TestFlusher_WritesSession(t *testing.T) {
	store := &flakyStore{}
	f := newTestFlusher(store, 0)

	f.flush(context.Background(), &storage.Session{AppKey: "code", DurationMs: 1000})

	require.Len(t, store.sessions(), 1)
	assert.Equal(t, "code", store.sessions()[0].AppKey)
	assert.False(t, f.Degraded())
	assert.Zero(t, f.PendingCount())
}

func TestFlusher_RetriesTransientFailures(t *testing.T) {
	store := &flakyStore{failures: 2}
	f := newTestFlusher(store, 3)

	f.flush(context.Background(), &storage.Session{AppKey: "code", DurationMs: 1000})

	require.Len(t, store.sessions(), 1, "write should succeed after retries")
	assert.False(t, f.Degraded())
}

func TestFlusher_BuffersOnExhaustedRetries(t *testing.T) {
	store := &flakyStore{failures: 100}
	f := newTestFlusher(store, 1)

	f.flush(context.Background(), &storage.Session{AppKey: "code", DurationMs: 1000})

	assert.Empty(t, store.sessions())
	assert.True(t, f.Degraded(), "exhausted retries should flag degraded mode")
	assert.Equal(t, 1, f.PendingCount())
}

func TestFlusher_DrainsBufferOnNextClose(t *testing.T) {
	store := &flakyStore{failures: 2}
	f := newTestFlusher(store, 0)

	// Two closes while the store is down: both buffer.
	f.flush(context.Background(), &storage.Session{AppKey: "first", DurationMs: 1000})
	f.flush(context.Background(), &storage.Session{AppKey: "second", DurationMs: 1000})
	require.Equal(t, 2, f.PendingCount())
	require.True(t, f.Degraded())

	// Store heals; the next close flushes everything in order.
	f.flush(context.Background(), &storage.Session{AppKey: "third", DurationMs: 1000})

	sessions := store.sessions()
	require.Len(t, sessions, 3)
	assert.Equal(t, "first", sessions[0].AppKey)
	assert.Equal(t, "second", sessions[1].AppKey)
	assert.Equal(t, "third", sessions[2].AppKey)
	assert.False(t, f.Degraded())
	assert.Zero(t, f.PendingCount())
}

func TestFlusher_RunConsumesQueue(t *testing.T) {
	store := &flakyStore{}
	f := newTestFlusher(store, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	f.Enqueue(&storage.Session{AppKey: "code", DurationMs: 1000})

	require.Eventually(t, func() bool {
		return len(store.sessions()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestFlusher_DrainsQueueOnShutdown(t *testing.T) {
	store := &flakyStore{}
	f := newTestFlusher(store, 0)

	// Enqueue before the loop ever runs, then cancel immediately: the
	// shutdown drain must still write it.
	f.Enqueue(&storage.Session{AppKey: "code", DurationMs: 1000})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.Run(ctx)

	require.Len(t, store.sessions(), 1)
}
