package tracker

import (
	"log/slog"
	"time"

	"github.com/runnerr0/glimpse/internal/storage"
)

// Sink receives closed sessions for persistence. The Flusher is the
// production implementation; tests substitute a recorder.
type Sink interface {
	Enqueue(session *storage.Session)
}

// builderState is the session state machine's tag.
type builderState int

const (
	stateIdle builderState = iota
	stateTracking
	statePendingSwitch
)

// openSession is the session currently being tracked.
type openSession struct {
	title     string
	appKey    string
	startedAt time.Time
}

// pendingSwitch records a candidate new identity that has not yet survived
// the debounce window.
type pendingSwitch struct {
	title     string
	appKey    string
	firstSeen time.Time
	count     int
}

// Builder coalesces consecutive identical-window samples into sessions.
// It is not re-entrant: exactly one goroutine feeds it samples, so state
// transitions never race.
//
// The machine has three states: Idle (nothing open), Tracking (one open
// session), and PendingSwitch (open session plus a candidate identity that
// must persist for debounceSamples before the switch commits). A flicker
// back to the original identity discards the candidate and the session
// continues uninterrupted.
type Builder struct {
	sink            Sink
	resolve         func(appKey string) string
	debounceSamples int
	minSession      time.Duration
	log             *slog.Logger

	state   builderState
	current openSession
	pending pendingSwitch
}

// NewBuilder creates a session builder. resolve is consulted at close time
// so the closed session can be logged with its category; categorization
// itself stays a query-time concern.
func NewBuilder(sink Sink, resolve func(string) string, debounceSamples int, minSession time.Duration, log *slog.Logger) *Builder {
	if debounceSamples < 1 {
		debounceSamples = 1
	}
	return &Builder{
		sink:            sink,
		resolve:         resolve,
		debounceSamples: debounceSamples,
		minSession:      minSession,
		log:             log,
		state:           stateIdle,
	}
}

// HandleSample advances the state machine by one observation.
func (b *Builder) HandleSample(sample RawSample) {
	if sample.Err != nil {
		// Probe failure: a gap in history, never a state transition.
		return
	}

	switch b.state {
	case stateIdle:
		b.open(sample)

	case stateTracking:
		if sample.AppKey == b.current.appKey {
			// Same identity: the open session simply continues.
			return
		}
		b.state = statePendingSwitch
		b.pending = pendingSwitch{
			title:     sample.Title,
			appKey:    sample.AppKey,
			firstSeen: sample.ObservedAt,
			count:     1,
		}

	case statePendingSwitch:
		switch sample.AppKey {
		case b.current.appKey:
			// Flicker: the original window came back before the debounce
			// threshold. Drop the candidate, keep the session.
			b.state = stateTracking
		case b.pending.appKey:
			b.pending.count++
			if b.pending.count >= b.debounceSamples {
				b.commitSwitch()
			}
		default:
			// A third identity restarts the debounce window.
			b.pending = pendingSwitch{
				title:     sample.Title,
				appKey:    sample.AppKey,
				firstSeen: sample.ObservedAt,
				count:     1,
			}
		}
	}
}

// Stop closes the open session immediately, with no debounce. Called on
// quit, sleep, or lock signals from the host.
func (b *Builder) Stop(now time.Time) {
	if b.state == stateIdle {
		return
	}
	b.close(now)
	b.state = stateIdle
}

// Tracking reports whether a session is currently open.
func (b *Builder) Tracking() bool {
	return b.state != stateIdle
}

func (b *Builder) open(sample RawSample) {
	b.state = stateTracking
	b.current = openSession{
		title:     sample.Title,
		appKey:    sample.AppKey,
		startedAt: sample.ObservedAt,
	}
}

// commitSwitch closes the current session at the instant the new identity
// first appeared, then opens a session for it backdated to that instant, so
// no wall-clock time is lost across the switch.
func (b *Builder) commitSwitch() {
	start := b.pending.firstSeen
	b.close(start)

	b.state = stateTracking
	b.current = openSession{
		title:     b.pending.title,
		appKey:    b.pending.appKey,
		startedAt: start,
	}
	b.pending = pendingSwitch{}
}

func (b *Builder) close(end time.Time) {
	duration := end.Sub(b.current.startedAt)
	if duration < 0 {
		duration = 0
	}

	if duration < b.minSession {
		b.log.Debug("discarding insignificant session",
			slog.String("app", b.current.appKey),
			slog.Duration("duration", duration),
		)
		return
	}

	session := &storage.Session{
		Title:      b.current.title,
		AppKey:     b.current.appKey,
		StartedAt:  b.current.startedAt,
		DurationMs: duration.Milliseconds(),
	}

	b.log.Info("session closed",
		slog.String("app", session.AppKey),
		slog.String("category", b.resolve(session.AppKey)),
		slog.Duration("duration", duration),
	)

	b.sink.Enqueue(session)
}
