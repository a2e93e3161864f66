package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/runnerr0/glimpse/internal/category"
	"github.com/runnerr0/glimpse/internal/config"
	"github.com/runnerr0/glimpse/internal/storage"
)

// Tracker wires the sampler, the session builder, and the flusher into one
// running engine. The builder only ever sees input from Run's loop, which
// serializes samples and host stop signals onto a single goroutine.
type Tracker struct {
	sampler *Sampler
	builder *Builder
	flusher *Flusher
	log     *slog.Logger

	samples chan RawSample
	stops   chan time.Time
}

// New assembles a tracker from its parts.
func New(probe Probe, store storage.Store, resolver *category.Resolver, cfg config.SamplingConfig, log *slog.Logger) *Tracker {
	flusher := NewFlusher(store, cfg.FlushTimeout(), cfg.FlushRetries, log)
	builder := NewBuilder(
		flusher,
		resolver.Resolve,
		cfg.DebounceSamples,
		time.Duration(cfg.MinSessionMs)*time.Millisecond,
		log,
	)

	return &Tracker{
		sampler: NewSampler(probe, cfg.Interval(), log),
		builder: builder,
		flusher: flusher,
		log:     log,
		samples: make(chan RawSample, 16),
		stops:   make(chan time.Time, 4),
	}
}

// Run drives the engine until ctx is canceled. On shutdown the open session
// is closed and handed to the flusher's final drain, so tracked time is not
// lost to a quit.
func (t *Tracker) Run(ctx context.Context) {
	flushCtx, stopFlusher := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t.flusher.Run(flushCtx)
	}()
	go func() {
		defer wg.Done()
		t.sampler.Run(ctx, t.samples)
	}()

	t.log.Info("tracking started")

	for {
		select {
		case <-ctx.Done():
			t.builder.Stop(time.Now())
			stopFlusher()
			wg.Wait()
			t.log.Info("tracking stopped")
			return
		case sample := <-t.samples:
			t.builder.HandleSample(sample)
		case at := <-t.stops:
			t.builder.Stop(at)
		}
	}
}

// Suspend closes the open session immediately, with no debounce. The host
// calls this on sleep or lock; sampling itself keeps running and a fresh
// session opens on the next sample.
func (t *Tracker) Suspend(now time.Time) {
	t.stops <- now
}

// Degraded reports whether session writes are currently failing and
// buffering in memory.
func (t *Tracker) Degraded() bool {
	return t.flusher.Degraded()
}
