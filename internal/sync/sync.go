package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/store"
)

// Destination is the interface for a sync target (S3, git, etc.).
type Destination interface {
	// Write stores the snapshot. Each project is kept separately, so a
	// write replaces only the board of snap.ProjectID.
	Write(ctx context.Context, snap *Snapshot) error
}

// Push writes snap to every destination, logging each failure, and returns
// the number of destinations that failed.
func Push(ctx context.Context, snap *Snapshot, destinations []Destination, logger *slog.Logger) int {
	failed := 0
	for i, dest := range destinations {
		if err := dest.Write(ctx, snap); err != nil {
			failed++
			logger.Error("sync destination write failed",
				"destination", i, "project_id", snap.ProjectID, "err", err)
		}
	}
	return failed
}

// Scheduler runs periodic syncs to one or more destinations.
type Scheduler struct {
	store        store.Store
	projectID    string
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports projectID from the store to
// the given destinations every interval. An interval of zero or less syncs
// once.
func NewScheduler(s store.Store, projectID string, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		projectID:    projectID,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic sync. It runs an initial sync immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current sync (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.syncOnce(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

// SyncOnce exports the project and pushes it to every destination. It
// returns the number of failed destinations, or an error when the export
// itself fails.
func (s *Scheduler) SyncOnce(ctx context.Context) (int, error) {
	snap, err := StoreSnapshot(ctx, s.store, s.projectID)
	if err != nil {
		return 0, err
	}

	failed := Push(ctx, snap, s.destinations, s.logger)
	s.logger.Info("sync completed",
		"project_id", s.projectID,
		"tasks", snap.TaskCount,
		"destinations", len(s.destinations),
		"failed", failed,
		"bytes", len(snap.Data))
	return failed, nil
}

func (s *Scheduler) syncOnce(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil {
		s.logger.Error("sync export failed", "project_id", s.projectID, "err", err)
	}
}
