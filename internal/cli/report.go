package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/glimpse/internal/api"
)

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(args []string) error {
	engine, db, err := openEngine(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()

	return c.executeWithEngine(engine)
}

// executeWithEngine runs the report against a provided engine (for testing).
func (c *ReportCommand) executeWithEngine(engine *api.Engine) error {
	day, err := parseDay(c.Day)
	if err != nil {
		return err
	}

	dayMs := day.UnixMilli()
	resp := engine.GetDailyCategoryBreakdown(context.Background(), &dayMs)
	if !resp.Success {
		return fmt.Errorf("breakdown failed: %s", resp.Error)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("Report for %s\n", day.Format("2006-01-02"))
	if len(resp.Data) == 0 {
		fmt.Println("No tracked time.")
		return nil
	}

	var totalMs int64
	for _, entry := range resp.Data {
		totalMs += entry.Time
		fmt.Printf("  %-20s %-10s %s\n", entry.Category, formatTrackedMs(entry.Time), entry.Color)
	}
	fmt.Printf("Total: %s\n", formatTrackedMs(totalMs))

	return nil
}
