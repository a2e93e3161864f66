package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/glimpse/internal/api"
)

// Execute implements the go-flags Commander interface for TimelineCommand.
func (c *TimelineCommand) Execute(args []string) error {
	engine, db, err := openEngine(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()

	return c.executeWithEngine(engine)
}

// executeWithEngine runs the timeline against a provided engine (for testing).
func (c *TimelineCommand) executeWithEngine(engine *api.Engine) error {
	day, err := parseDay(c.Day)
	if err != nil {
		return err
	}

	resp := engine.GetGroupedCategories(context.Background(), day.UnixMilli())
	if resp.Error != "" {
		return fmt.Errorf("timeline failed: %s", resp.Error)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("Timeline for %s\n", day.Format("2006-01-02"))
	if len(resp.Data) == 0 {
		fmt.Println("No tracked time.")
		return nil
	}

	for _, seg := range resp.Data {
		start := seg.SessionEnd - seg.SessionLength
		names := make([]string, len(seg.Categories))
		for i, cat := range seg.Categories {
			names[i] = cat.Name
		}
		fmt.Printf("  %s - %s  %-10s %s\n",
			formatClock(start), formatClock(seg.SessionEnd),
			formatTrackedMs(seg.SessionLength), strings.Join(names, ", "))
	}

	return nil
}
