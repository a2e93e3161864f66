// Package tracker turns a stream of foreground-window observations into
// durable focus sessions. The OS probe itself lives in the host
// application; this package owns the sampling loop, the session state
// machine, and the write path to the store.
package tracker

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// WindowInfo is what the OS probe reports for the foreground window.
type WindowInfo struct {
	WindowID string
	Title    string
	AppName  string
}

// Probe reads the current foreground window. Implemented by the host's
// OS-integration layer; failures are expected to be transient.
type Probe interface {
	ForegroundWindow(ctx context.Context) (WindowInfo, error)
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(ctx context.Context) (WindowInfo, error)

func (f ProbeFunc) ForegroundWindow(ctx context.Context) (WindowInfo, error) {
	return f(ctx)
}

// RawSample is a single observation of the foreground window. A non-nil Err
// marks a probe failure; the sample then carries only ObservedAt.
type RawSample struct {
	WindowID   string
	Title      string
	AppKey     string
	ObservedAt time.Time
	Err        error
}

// DeriveAppKey normalizes a probe report into the identity used for
// categorization: the lower-cased, trimmed app name with any .exe suffix
// dropped. Decoupled from the volatile window title on purpose.
func DeriveAppKey(info WindowInfo) string {
	key := strings.ToLower(strings.TrimSpace(info.AppName))
	key = strings.TrimSuffix(key, ".exe")
	if key == "" {
		key = "unknown"
	}
	return key
}

// Sampler polls the probe at a fixed interval and emits raw samples. It is
// restartable and runs for the lifetime of its context; probe failures are
// logged and emitted as error markers, never fatal.
type Sampler struct {
	probe    Probe
	interval time.Duration
	log      *slog.Logger
}

// NewSampler creates a sampler over the given probe.
func NewSampler(probe Probe, interval time.Duration, log *slog.Logger) *Sampler {
	return &Sampler{probe: probe, interval: interval, log: log}
}

// Run polls until ctx is canceled, sending every sample to out. The channel
// is not closed on return; the caller owns it.
func (s *Sampler) Run(ctx context.Context, out chan<- RawSample) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sample := s.takeSample(ctx, now)
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Sampler) takeSample(ctx context.Context, now time.Time) RawSample {
	info, err := s.probe.ForegroundWindow(ctx)
	if err != nil {
		s.log.Warn("window probe failed", slog.Any("error", err))
		return RawSample{ObservedAt: now, Err: err}
	}

	return RawSample{
		WindowID:   info.WindowID,
		Title:      info.Title,
		AppKey:     DeriveAppKey(info),
		ObservedAt: now,
	}
}
