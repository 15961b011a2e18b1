// Package reconcile converges the object store onto the metadata store.
//
// The write path prefers orphaned blobs over dangling references: image
// bytes are stored before the row insert, and a failed insert or a failed
// best-effort delete can leave objects nothing points at. The sweeper
// removes them in two passes: first it retries deletes recorded in the
// cleanup journal, then it scans the container for objects no photo row
// references. Objects newer than the grace window are never touched, so
// an upload whose row insert is still in flight survives the sweep.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// Config options for the sweeper
type Config struct {
	// Grace protects recently written objects; zero means no window
	Grace time.Duration
	// DryRun counts orphans without deleting anything
	DryRun bool
	// JournalOnly retries journaled deletes and skips the container scan,
	// for cheap frequent runs against large containers
	JournalOnly bool
}

// DefaultGrace keeps objects younger than an hour out of the sweep.
const DefaultGrace = time.Hour

// Sweeper removes unreferenced objects from the blob store
type Sweeper struct {
	store       photoshare.BlobStore
	repo        photoshare.Repository
	journal     photoshare.CleanupJournal
	logger      *slog.Logger
	grace       time.Duration
	dryRun      bool
	journalOnly bool
}

// Report summarizes one sweep
type Report struct {
	Scanned        int // objects seen in the container
	Orphans        int // objects no row references and past the grace window
	Deleted        int // orphans actually removed
	JournalRetried int // journaled deletes retried successfully
	Failed         int // deletes that failed and stay pending
}

// New creates a sweeper. Journal may be nil when no journal is configured.
func New(store photoshare.BlobStore, repo photoshare.Repository, journal photoshare.CleanupJournal, logger *slog.Logger, config Config) *Sweeper {
	if journal == nil {
		journal = photoshare.NewNoopJournal()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:       store,
		repo:        repo,
		journal:     journal,
		logger:      logger,
		grace:       config.Grace,
		dryRun:      config.DryRun,
		journalOnly: config.JournalOnly,
	}
}

// Run executes one sweep
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	var report Report

	urls, err := s.repo.ListImageURLs(ctx)
	if err != nil {
		return report, fmt.Errorf("list image urls: %w", err)
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		referenced[s.store.ObjectKey(url)] = struct{}{}
	}

	s.drainJournal(ctx, referenced, &report)

	if !s.journalOnly {
		if err := s.sweepContainer(ctx, referenced, &report); err != nil {
			return report, err
		}
	}

	if report.Orphans > 0 || report.JournalRetried > 0 || report.Failed > 0 {
		s.logger.Info("reconcile: sweep complete",
			"scanned", report.Scanned,
			"orphans", report.Orphans,
			"deleted", report.Deleted,
			"journal_retried", report.JournalRetried,
			"failed", report.Failed)
	}

	return report, nil
}

// sweepContainer scans every object in the container and removes the ones
// no photo row references, once they are older than the grace window.
func (s *Sweeper) sweepContainer(ctx context.Context, referenced map[string]struct{}, report *Report) error {
	objects, err := s.store.ListObjects(ctx)
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}

	cutoff := time.Now().Add(-s.grace)
	for _, obj := range objects {
		report.Scanned++
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.UpdatedAt.After(cutoff) {
			// An upload whose row insert has not landed yet looks like
			// an orphan; the grace window keeps it safe.
			continue
		}

		report.Orphans++
		if s.dryRun {
			s.logger.Info("reconcile: orphaned object (dry run)", "key", obj.Key)
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			report.Failed++
			s.logger.Warn("reconcile: delete failed", "key", obj.Key, "err", err)
			continue
		}
		report.Deleted++
		s.logger.Info("reconcile: removed orphaned object",
			"key", obj.Key, "age", time.Since(obj.UpdatedAt).Round(time.Second))
	}

	return nil
}

// drainJournal retries deletes the service could not finish. A journaled
// key that a row still references means the surrounding operation never
// completed; the metadata store wins and the entry is dropped.
func (s *Sweeper) drainJournal(ctx context.Context, referenced map[string]struct{}, report *Report) {
	pending, err := s.journal.Pending(ctx)
	if err != nil {
		s.logger.Warn("reconcile: journal read failed", "err", err)
		return
	}

	for _, key := range pending {
		if _, ok := referenced[key]; ok {
			s.logger.Info("reconcile: journaled key still referenced, dropping entry", "key", key)
			if err := s.journal.Remove(ctx, key); err != nil {
				s.logger.Warn("reconcile: journal remove failed", "key", key, "err", err)
			}
			continue
		}
		if s.dryRun {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			report.Failed++
			s.logger.Warn("reconcile: journaled delete failed", "key", key, "err", err)
			continue
		}
		if err := s.journal.Remove(ctx, key); err != nil {
			s.logger.Warn("reconcile: journal remove failed", "key", key, "err", err)
			continue
		}
		report.JournalRetried++
	}
}

// RunPeriodic starts a background goroutine that sweeps on every interval
// until ctx is cancelled. A first pass runs immediately at startup to flush
// orphans left over from a previous crash or restart.
func (s *Sweeper) RunPeriodic(ctx context.Context, interval time.Duration) {
	go func() {
		if _, err := s.Run(ctx); err != nil {
			s.logger.Error("reconcile: sweep failed", "err", err)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					s.logger.Error("reconcile: sweep failed", "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
