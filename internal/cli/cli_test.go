package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFlag(t *testing.T) {
	output := captureOutput(t, func() {
		err := RunWithArgs("0.1.0-test", []string{"--version"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "glimpse 0.1.0-test")
}

func TestVersionOutputFormat(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"--version"})
	})

	assert.Equal(t, "glimpse 1.2.3", strings.TrimSpace(output))
}

func TestSubcommandsRegistered(t *testing.T) {
	parser, _, cmds := buildParser("test")

	for _, name := range []string{"track", "status", "report", "timeline", "categories", "assign"} {
		assert.NotNil(t, parser.Find(name), "command %q not registered", name)
	}

	require.NotNil(t, cmds.Report)
	assert.Equal(t, "test", cmds.Report.version)
}

func TestGlobalFlagsShared(t *testing.T) {
	_, globals, cmds := buildParser("test")

	globals.JSON = true
	assert.True(t, cmds.Status.globals.JSON)
	assert.True(t, cmds.Timeline.globals.JSON)
}

// --- helpers ---

func TestParseDay(t *testing.T) {
	day, err := parseDay("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), day)

	today, err := parseDay("")
	require.NoError(t, err)
	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 0, today.Minute())

	yesterday, err := parseDay("yesterday")
	require.NoError(t, err)
	assert.True(t, yesterday.Before(today))

	_, err = parseDay("not-a-day")
	require.Error(t, err)
}

func TestFormatTrackedMs(t *testing.T) {
	assert.Equal(t, "0s", formatTrackedMs(0))
	assert.Equal(t, "45s", formatTrackedMs(45_000))
	assert.Equal(t, "2m 30s", formatTrackedMs(150_000))
	assert.Equal(t, "1h 30m", formatTrackedMs(5_400_000))
}

func TestParseProbeOutput(t *testing.T) {
	info, err := parseProbeOutput("chrome\tSome Page - Google Chrome\n")
	require.NoError(t, err)
	assert.Equal(t, "chrome", info.AppName)
	assert.Equal(t, "Some Page - Google Chrome", info.Title)

	info, err = parseProbeOutput("slack\n")
	require.NoError(t, err)
	assert.Equal(t, "slack", info.AppName)
	assert.Empty(t, info.Title)

	_, err = parseProbeOutput("\n")
	require.Error(t, err)
}
