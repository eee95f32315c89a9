package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/event"
	"github.com/osse101/HarvestShare_Go/internal/logger"
	"github.com/osse101/HarvestShare_Go/internal/repository"
)

// Expiry worker defaults
const (
	DefaultSweepInterval     = 15 * time.Minute
	DefaultCompletionWorkers = 4
	DefaultCompletionQueue   = 64
)

// SweepResult summarises one expiry sweep
type SweepResult struct {
	Expired   int
	Completed int
}

// ExpiryWorker periodically closes allocations whose claim deadline has passed
// and completes harvests that no longer have an open allocation.
// Unclaimed quantity on an expired allocation is left in place; nothing is redistributed.
type ExpiryWorker struct {
	allocationRepo repository.AllocationRepository
	harvestRepo    repository.HarvestRepository
	bus            event.Bus
	interval       time.Duration
	now            func() time.Time

	pool     *Pool
	poolOnce sync.Once
	timer    *time.Timer
	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	sweepMu  sync.Mutex
}

// NewExpiryWorker creates a new ExpiryWorker. A non-positive interval uses DefaultSweepInterval.
func NewExpiryWorker(
	allocationRepo repository.AllocationRepository,
	harvestRepo repository.HarvestRepository,
	bus event.Bus,
	interval time.Duration,
) *ExpiryWorker {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &ExpiryWorker{
		allocationRepo: allocationRepo,
		harvestRepo:    harvestRepo,
		bus:            bus,
		interval:       interval,
		now:            time.Now,
		pool:           NewPool(DefaultCompletionWorkers, DefaultCompletionQueue),
		shutdown:       make(chan struct{}),
	}
}

// WithClock overrides the time source, for tests
func (w *ExpiryWorker) WithClock(now func() time.Time) *ExpiryWorker {
	w.now = now
	return w
}

// Start launches the completion pool and schedules the first sweep
func (w *ExpiryWorker) Start() {
	w.startPool()
	w.scheduleNext()
}

func (w *ExpiryWorker) startPool() {
	w.poolOnce.Do(w.pool.Start)
}

func (w *ExpiryWorker) scheduleNext() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdown:
		return
	default:
	}

	w.timer = time.AfterFunc(w.interval, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}
		w.executeSweep()
		w.scheduleNext()
	})

	logger.FromContext(context.Background()).Debug(LogMsgExpirySweepScheduled, "next_sweep_at", time.Now().UTC().Add(w.interval))
}

// executeSweep runs one sweep in a tracked goroutine and waits for it
func (w *ExpiryWorker) executeSweep() {
	w.wg.Add(1)
	defer w.wg.Done()

	ctx := context.Background()
	if _, err := w.Sweep(ctx); err != nil {
		logger.FromContext(ctx).Error(LogMsgExpirySweepFailed, "error", err)
	}
}

// Sweep expires overdue allocations and completes finished harvests.
// Concurrent calls are serialized.
func (w *ExpiryWorker) Sweep(ctx context.Context) (SweepResult, error) {
	w.sweepMu.Lock()
	defer w.sweepMu.Unlock()
	w.startPool()

	log := logger.FromContext(ctx)
	now := w.now()
	log.Debug(LogMsgExpirySweepStarting, "cutoff", now)

	expired, err := w.allocationRepo.ExpireAllocations(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to expire allocations: %w", err)
	}
	for i := range expired {
		event.PublishBestEffort(ctx, w.bus, event.NewAllocationExpiredEvent(&expired[i]), log)
	}

	harvests, err := w.harvestRepo.ListHarvestsByStatus(ctx, domain.HarvestAllocated)
	if err != nil {
		return SweepResult{Expired: len(expired)}, fmt.Errorf("failed to list allocated harvests: %w", err)
	}

	var (
		completed int64
		jobs      sync.WaitGroup
	)
	for _, h := range harvests {
		harvestID := h.ID
		jobs.Add(1)
		err := w.pool.Enqueue(ctx, JobFunc(func(ctx context.Context) error {
			defer jobs.Done()
			done, err := w.completeIfClosed(ctx, harvestID)
			if done {
				atomic.AddInt64(&completed, 1)
			}
			return err
		}))
		if err != nil {
			jobs.Done()
			jobs.Wait()
			return SweepResult{Expired: len(expired), Completed: int(completed)}, fmt.Errorf("failed to schedule completion checks: %w", err)
		}
	}
	jobs.Wait()

	result := SweepResult{Expired: len(expired), Completed: int(atomic.LoadInt64(&completed))}
	log.Info(LogMsgExpirySweepCompleted, "expired", result.Expired, "completed", result.Completed)
	return result, nil
}

// completeIfClosed moves a harvest to complete once none of its allocations is open
func (w *ExpiryWorker) completeIfClosed(ctx context.Context, harvestID string) (bool, error) {
	allocations, err := w.allocationRepo.ListAllocationsByHarvest(ctx, harvestID)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", LogMsgCompletionFailed, harvestID, err)
	}
	if len(allocations) == 0 {
		return false, nil
	}
	for _, a := range allocations {
		if a.Status == domain.AllocationOpen {
			return false, nil
		}
	}

	err = w.harvestRepo.UpdateHarvestStatus(ctx, harvestID, domain.HarvestAllocated, domain.HarvestComplete)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			// moved on since it was listed
			return false, nil
		}
		return false, fmt.Errorf("%s %s: %w", LogMsgCompletionFailed, harvestID, err)
	}

	logger.FromContext(ctx).Info(LogMsgHarvestCompleted, "harvestID", harvestID)
	return true, nil
}

// Shutdown gracefully shuts down the expiry worker.
// Cancels the pending timer and waits for an in-flight sweep to complete.
func (w *ExpiryWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down expiry worker")

	w.mu.Lock()
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		w.pool.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Expiry worker shutdown complete")
		return nil
	case <-ctx.Done():
		log.Warn("Expiry worker shutdown timeout, a sweep may still be running")
		return ctx.Err()
	}
}
