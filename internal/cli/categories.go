package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/runnerr0/glimpse/internal/api"
)

// Execute implements the go-flags Commander interface for CategoriesCommand.
func (c *CategoriesCommand) Execute(args []string) error {
	engine, db, err := openEngine(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()

	return c.executeWithEngine(engine)
}

// executeWithEngine dispatches to list/create/update/delete (for testing).
func (c *CategoriesCommand) executeWithEngine(engine *api.Engine) error {
	set := 0
	for _, flag := range []string{c.Create, c.Update, c.Delete} {
		if flag != "" {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("--create, --update, and --delete are mutually exclusive")
	}

	ctx := context.Background()

	switch {
	case c.Create != "":
		resp, err := engine.CreateCustomCategory(ctx, c.Create, c.Description, c.Color)
		return c.reportMutation(resp, err, "created")
	case c.Update != "":
		resp, err := engine.UpdateCustomCategory(ctx, c.Update, "", c.Description, c.Color)
		return c.reportMutation(resp, err, "updated")
	case c.Delete != "":
		resp, err := engine.DeleteCustomCategory(ctx, c.Delete)
		return c.reportMutation(resp, err, "deleted")
	default:
		return c.list(ctx, engine)
	}
}

func (c *CategoriesCommand) reportMutation(resp api.MutationResponse, err error, verb string) error {
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.ID != "" {
		fmt.Printf("Category %s (%s)\n", verb, resp.ID)
	} else {
		fmt.Printf("Category %s\n", verb)
	}
	return nil
}

func (c *CategoriesCommand) list(ctx context.Context, engine *api.Engine) error {
	resp := engine.GetAppCategories(ctx)
	if !resp.Success {
		return fmt.Errorf("list categories: %s", resp.Error)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	ids := make([]string, 0, len(resp.Data.Categories))
	for id := range resp.Data.Categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		info := resp.Data.Categories[id]
		kind := "builtin"
		if info.IsCustom {
			kind = "custom"
		}
		fmt.Printf("%-20s %-8s %s\n", id, kind, info.Color)
		if len(info.Apps) > 0 {
			fmt.Printf("  apps: %s\n", strings.Join(info.Apps, ", "))
		}
	}

	return nil
}
