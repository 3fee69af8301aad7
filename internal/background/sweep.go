package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/coffer/internal/throttle"
)

// SweepManager periodically evicts expired lockout records from the
// login throttle tracker so idle identities do not accumulate.
type SweepManager struct {
	tracker  *throttle.Tracker
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweepManager creates a new sweep manager
func NewSweepManager(tracker *throttle.Tracker, logger *slog.Logger, interval time.Duration) *SweepManager {
	return &SweepManager{
		tracker:  tracker,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (sm *SweepManager) Start(ctx context.Context) {
	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.runSweep()
		case <-sm.stopCh:
			sm.logger.Info("throttle sweep manager stopped")
			return
		case <-ctx.Done():
			sm.logger.Info("throttle sweep manager context cancelled")
			return
		}
	}
}

func (sm *SweepManager) runSweep() {
	evicted := sm.tracker.Sweep()
	if evicted > 0 {
		sm.logger.Info("throttle sweep completed",
			slog.Int("records_evicted", evicted),
			slog.Int("records_remaining", sm.tracker.Len()),
		)
	}
}

// Stop signals the sweep manager to stop
func (sm *SweepManager) Stop() {
	close(sm.stopCh)
}
