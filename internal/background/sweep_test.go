package background

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/coffer/internal/throttle"
)

func TestSweepManager_EvictsExpiredRecords(t *testing.T) {
	tracker := throttle.New(5, 1*time.Millisecond)
	tracker.RecordFailure("alice@example.com")
	tracker.RecordFailure("bob@example.com")
	assert.Equal(t, 2, tracker.Len())

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	manager := NewSweepManager(tracker, logger, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return tracker.Len() == 0
	}, time.Second, 5*time.Millisecond)

	manager.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep manager did not stop")
	}
}

func TestSweepManager_StopsOnContextCancel(t *testing.T) {
	tracker := throttle.New(5, time.Hour)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	manager := NewSweepManager(tracker, logger, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep manager did not observe context cancellation")
	}
}
