package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mediastash/photoshare/pkg/photoshare/config"
	"github.com/mediastash/photoshare/pkg/photoshare/reconcile"
)

const usage = `Photo Share Reconciler

Sweeps the object store for orphaned images (objects no photo row
references) and retries blob deletes recorded in the cleanup journal.

USAGE:
  reconcile [options]

OPTIONS:
  -grace <duration>     Ignore objects newer than this (default: 1h)
  -dry-run              Report orphans without deleting anything
  -interval <duration>  Keep sweeping on this interval; 0 sweeps once and exits
  -journal-only         Retry journaled deletes, skip the container scan

ENVIRONMENT VARIABLES:
  The reconciler reads the same variables as the server (DATABASE_URL,
  STORAGE_URL, CLEANUP_JOURNAL, ...).

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  # One sweep, report and delete orphans older than an hour
  reconcile

  # See what would be deleted without touching anything
  reconcile -dry-run -grace 10m

  # Run as a sidecar, retrying journaled deletes every minute
  reconcile -interval 1m -journal-only
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	grace := flag.Duration("grace", reconcile.DefaultGrace, "ignore objects newer than this")
	dryRun := flag.Bool("dry-run", false, "report orphans without deleting anything")
	interval := flag.Duration("interval", 0, "keep sweeping on this interval; 0 sweeps once and exits")
	journalOnly := flag.Bool("journal-only", false, "retry journaled deletes, skip the container scan")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	rt, err := cfg.BuildService(ctx)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}
	defer rt.Close()

	sweeper := reconcile.New(rt.BlobStore, rt.Repository, rt.Journal, slog.Default(), reconcile.Config{
		Grace:       *grace,
		DryRun:      *dryRun,
		JournalOnly: *journalOnly,
	})

	if *interval > 0 {
		sweepCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		sweeper.RunPeriodic(sweepCtx, *interval)

		// Wait for interrupt signal
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("Reconciler shutting down")
		return
	}

	report, err := sweeper.Run(ctx)
	if err != nil {
		slog.Error("Sweep failed", "err", err)
		rt.Close()
		os.Exit(1)
	}
	slog.Info("Sweep complete",
		"scanned", report.Scanned,
		"orphans", report.Orphans,
		"deleted", report.Deleted,
		"journal_retried", report.JournalRetried,
		"failed", report.Failed)
}
