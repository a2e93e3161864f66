package tracker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAppKey(t *testing.T) {
	tests := []struct {
		info     WindowInfo
		expected string
	}{
		{WindowInfo{AppName: "Code"}, "code"},
		{WindowInfo{AppName: "Code.exe"}, "code"},
		{WindowInfo{AppName: "  Slack  "}, "slack"},
		{WindowInfo{AppName: "Google Chrome"}, "google chrome"},
		{WindowInfo{AppName: "", Title: "anything"}, "unknown"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, DeriveAppKey(tc.info), "app key for %+v", tc.info)
	}
}

func TestSampler_EmitsSamples(t *testing.T) {
	probe := ProbeFunc(func(context.Context) (WindowInfo, error) {
		return WindowInfo{WindowID: "w1", Title: "main.go - Code", AppName: "Code"}, nil
	})

	s := NewSampler(probe, time.Millisecond, discardLogger())
	out := make(chan RawSample, 16)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx, out)

	var samples []RawSample
	for len(samples) < 3 {
		select {
		case sample := <-out:
			samples = append(samples, sample)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for samples")
		}
	}
	cancel()

	for _, sample := range samples {
		require.NoError(t, sample.Err)
		assert.Equal(t, "w1", sample.WindowID)
		assert.Equal(t, "main.go - Code", sample.Title)
		assert.Equal(t, "code", sample.AppKey)
		assert.False(t, sample.ObservedAt.IsZero())
	}
}

func TestSampler_ProbeFailureEmitsErrorMarker(t *testing.T) {
	var calls atomic.Int64
	probe := ProbeFunc(func(context.Context) (WindowInfo, error) {
		if calls.Add(1) == 1 {
			return WindowInfo{}, assert.AnError
		}
		return WindowInfo{AppName: "Code"}, nil
	})

	s := NewSampler(probe, time.Millisecond, discardLogger())
	out := make(chan RawSample, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, out)

	first := <-out
	assert.Error(t, first.Err, "first sample should carry the probe error")
	assert.False(t, first.ObservedAt.IsZero())

	second := <-out
	assert.NoError(t, second.Err, "sampling should continue after a failure")
	assert.Equal(t, "code", second.AppKey)
}
