package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/glimpse/internal/aggregate"
	"github.com/runnerr0/glimpse/internal/api"
	"github.com/runnerr0/glimpse/internal/category"
	"github.com/runnerr0/glimpse/internal/config"
	"github.com/runnerr0/glimpse/internal/storage"
)

// loadConfig loads the config file named by --config, or the default path,
// creating it with defaults on first run.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.LoadOrCreateAt(globals.Config)
	}
	return config.LoadOrCreate()
}

// openStore opens the configured database, runs migrations, and returns a
// ready-to-use store and the underlying *sql.DB.
func openStore(cfg *config.Config) (*storage.SQLiteStore, *sql.DB, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if err := storage.NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// openEngine opens the store and wires the resolver, aggregator, and API
// engine on top of it. Close the returned db when done.
func openEngine(globals *GlobalFlags) (*api.Engine, *sql.DB, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, nil, err
	}

	store, db, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	resolver, err := category.NewResolver(context.Background(), store)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	engine := api.NewEngine(store, resolver, aggregate.New(store, resolver))
	return engine, db, nil
}

// newLogger builds the CLI logger. Verbose enables debug level.
func newLogger(globals *GlobalFlags, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if globals != nil && globals.Verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// parseDay parses a --day value into local midnight of that day.
// Empty means today.
func parseDay(s string) (time.Time, error) {
	now := time.Now()
	switch s {
	case "", "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	case "yesterday":
		y := now.AddDate(0, 0, -1)
		return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (use YYYY-MM-DD, today, or yesterday)", s)
	}
	return d, nil
}

// formatTrackedMs formats a millisecond total as a compact duration like
// "1h 30m" or "45s".
func formatTrackedMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// formatClock renders an epoch-ms instant as a local HH:MM:SS clock time.
func formatClock(ms int64) string {
	return time.UnixMilli(ms).Local().Format("15:04:05")
}
