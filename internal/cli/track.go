package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/runnerr0/glimpse/internal/aggregate"
	"github.com/runnerr0/glimpse/internal/api"
	"github.com/runnerr0/glimpse/internal/category"
	"github.com/runnerr0/glimpse/internal/tracker"
)

// Execute implements the go-flags Commander interface for TrackCommand.
func (c *TrackCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Daemon.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}

	log := newLogger(c.globals, cfg.Logging.Level)

	store, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, err := category.NewResolver(ctx, store)
	if err != nil {
		return err
	}

	trk := tracker.New(c.probe(), store, resolver, cfg.Sampling, log)

	engine := api.NewEngine(store, resolver, aggregate.New(store, resolver))
	srv := api.NewServer(engine, trk.Degraded, log).HTTPServer(
		fmt.Sprintf("%s:%d", cfg.Daemon.Host, cfg.Daemon.Port))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	done := make(chan struct{})
	go func() {
		trk.Run(ctx)
		close(done)
	}()

	log.Info("glimpse daemon started",
		slog.String("addr", srv.Addr),
		slog.String("version", c.version),
	)

	select {
	case err := <-errCh:
		stop()
		<-done
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", slog.String("error", err.Error()))
	}

	log.Info("glimpse daemon stopped")
	return nil
}

// probe builds the window probe. With --probe-cmd the command is run each
// sample and must print "app<TAB>window title" on its first line; without
// it every sample is a probe failure, which keeps the daemon and its HTTP
// surface useful on hosts that feed sessions over the API instead.
func (c *TrackCommand) probe() tracker.Probe {
	if c.ProbeCmd == "" {
		return tracker.ProbeFunc(func(ctx context.Context) (tracker.WindowInfo, error) {
			return tracker.WindowInfo{}, fmt.Errorf("no window probe configured (use --probe-cmd)")
		})
	}

	cmd := c.ProbeCmd
	return tracker.ProbeFunc(func(ctx context.Context) (tracker.WindowInfo, error) {
		out, err := exec.CommandContext(ctx, "/bin/sh", "-c", cmd).Output()
		if err != nil {
			return tracker.WindowInfo{}, fmt.Errorf("probe command: %w", err)
		}
		return parseProbeOutput(string(out))
	})
}

// parseProbeOutput parses the first line of probe command output:
// "app<TAB>window title". Title is optional.
func parseProbeOutput(out string) (tracker.WindowInfo, error) {
	line, _, _ := strings.Cut(out, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return tracker.WindowInfo{}, fmt.Errorf("probe command produced no output")
	}

	app, title, _ := strings.Cut(line, "\t")
	return tracker.WindowInfo{
		AppName: app,
		Title:   strings.TrimSpace(title),
	}, nil
}
