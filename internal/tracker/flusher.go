package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/runnerr0/glimpse/internal/storage"
)

// Flusher persists closed sessions asynchronously so a slow store write
// never delays the sampling loop. All writes run on one goroutine, keeping
// them serialized; a write that exhausts its retries parks the session in a
// pending buffer and flags degraded mode, so nothing is silently dropped.
type Flusher struct {
	store      storage.Store
	timeout    time.Duration
	maxRetries uint64
	log        *slog.Logger

	queue chan *storage.Session

	mu       sync.Mutex
	pending  []*storage.Session
	degraded bool
}

// NewFlusher creates a flusher over the store. timeout bounds each write
// attempt; maxRetries bounds the backoff per session before buffering.
func NewFlusher(store storage.Store, timeout time.Duration, maxRetries int, log *slog.Logger) *Flusher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Flusher{
		store:      store,
		timeout:    timeout,
		maxRetries: uint64(maxRetries),
		log:        log,
		queue:      make(chan *storage.Session, 64),
	}
}

// Enqueue hands a closed session to the flush goroutine. Never blocks the
// caller for longer than a channel send; the queue is buffered well beyond
// any realistic close rate.
func (f *Flusher) Enqueue(session *storage.Session) {
	f.queue <- session
}

// Run consumes the queue until ctx is canceled, then makes one final drain
// attempt so sessions closed during shutdown still reach the store.
func (f *Flusher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			f.drainOnShutdown()
			return
		case session := <-f.queue:
			f.flush(ctx, session)
		}
	}
}

// Degraded reports whether the store is currently unreachable and sessions
// are accumulating in memory.
func (f *Flusher) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

// PendingCount returns the number of sessions awaiting a retry.
func (f *Flusher) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// flush retries any previously-buffered sessions first, preserving close
// order, then writes the new one. On the first failure everything left over
// is buffered for the next close event.
func (f *Flusher) flush(ctx context.Context, session *storage.Session) {
	f.mu.Lock()
	batch := append(f.pending, session)
	f.pending = nil
	f.mu.Unlock()

	for i, s := range batch {
		if err := f.write(ctx, s); err != nil {
			f.log.Error("session flush failed, buffering",
				slog.String("app", s.AppKey),
				slog.Int("buffered", len(batch)-i),
				slog.Any("error", err),
			)
			f.mu.Lock()
			f.pending = append(f.pending, batch[i:]...)
			f.degraded = true
			f.mu.Unlock()
			return
		}
	}

	f.mu.Lock()
	if f.degraded {
		f.log.Info("store recovered, pending sessions flushed")
	}
	f.degraded = false
	f.mu.Unlock()
}

// write attempts one session insert with exponential backoff. Each attempt
// gets its own bounded timeout so store I/O can never hang the flusher.
func (f *Flusher) write(ctx context.Context, session *storage.Session) error {
	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		return f.store.AddSession(attemptCtx, session)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = 0 // retry count is the only bound

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, f.maxRetries), ctx))
}

// drainOnShutdown gives buffered and queued sessions one last write each,
// without backoff, on a short independent deadline.
func (f *Flusher) drainOnShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	f.mu.Lock()
	batch := f.pending
	f.pending = nil
	f.mu.Unlock()

	for {
		select {
		case s := <-f.queue:
			batch = append(batch, s)
			continue
		default:
		}
		break
	}

	for _, s := range batch {
		if err := f.store.AddSession(ctx, s); err != nil {
			f.log.Error("session lost at shutdown",
				slog.String("app", s.AppKey),
				slog.Any("error", err),
			)
		}
	}
}
