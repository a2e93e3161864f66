package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/glimpse/internal/api"
)

// Execute implements the go-flags Commander interface for AssignCommand.
func (c *AssignCommand) Execute(args []string) error {
	if c.App == "" {
		return fmt.Errorf("--app is required for assign command")
	}
	if c.Category == "" {
		return fmt.Errorf("--category is required for assign command")
	}

	engine, db, err := openEngine(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()

	return c.executeWithEngine(engine)
}

// executeWithEngine runs the assignment against a provided engine (for testing).
func (c *AssignCommand) executeWithEngine(engine *api.Engine) error {
	resp, err := engine.AssignAppToCategory(context.Background(), c.App, c.Category)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("Assigned %s to %s\n", c.App, c.Category)
	return nil
}
