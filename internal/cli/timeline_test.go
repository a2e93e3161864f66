package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/glimpse/internal/api"
	"github.com/runnerr0/glimpse/internal/storage"
)

func TestTimeline_Empty(t *testing.T) {
	engine, _, _, _ := setupCLITest(t)

	cmd := &TimelineCommand{Day: "2024-03-01", globals: &GlobalFlags{}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEngine(engine))
	})

	assert.Contains(t, output, "Timeline for 2024-03-01")
	assert.Contains(t, output, "No tracked time.")
}

func TestTimeline_WithSessions(t *testing.T) {
	engine, store, _, _ := setupCLITest(t)

	noon := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	require.NoError(t, store.AddSession(context.Background(), &storage.Session{
		AppKey: "chrome", StartedAt: noon, DurationMs: 30 * 60 * 1000,
	}))

	cmd := &TimelineCommand{Day: "2024-03-01", globals: &GlobalFlags{}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEngine(engine))
	})

	assert.Contains(t, output, "12:00:00 - 12:30:00")
	assert.Contains(t, output, "browsing")
}

func TestTimeline_JSON(t *testing.T) {
	engine, store, _, _ := setupCLITest(t)

	noon := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	require.NoError(t, store.AddSession(context.Background(), &storage.Session{
		AppKey: "chrome", StartedAt: noon, DurationMs: 60_000,
	}))

	cmd := &TimelineCommand{Day: "2024-03-01", globals: &GlobalFlags{JSON: true}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEngine(engine))
	})

	var resp api.TimelineResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(60_000), resp.Data[0].SessionLength)
	require.Len(t, resp.Data[0].Categories, 1)
	assert.Equal(t, "browsing", resp.Data[0].Categories[0].Name)
}
