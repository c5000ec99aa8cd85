package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appdropship "github.com/markethub/backend/internal/application/dropship"
)

// StatusSweeper runs one status reconciliation pass
type StatusSweeper interface {
	SyncStatuses(ctx context.Context) (*appdropship.StatusSyncStats, error)
}

// InventorySweeper runs one inventory reconciliation pass
type InventorySweeper interface {
	SyncInventory(ctx context.Context) (*appdropship.InventorySyncStats, error)
}

// RetrySweeper re-attempts FAILED forwards once
type RetrySweeper interface {
	RetryFailed(ctx context.Context) (*appdropship.RetryStats, error)
}

// SweepScheduler runs the three background reconciliation loops: status sync,
// inventory sync and the failed-forward retry sweep. Each loop ticks on its
// own interval; a slow sweep never delays the others, and each sweep run is
// time-boxed so one unresponsive supplier cannot wedge a loop.
type SweepScheduler struct {
	status    StatusSweeper
	inventory InventorySweeper
	retry     RetrySweeper
	logger    *zap.Logger
	config    SweepSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// SweepSchedulerConfig holds configuration for the sweep scheduler
type SweepSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// StatusInterval is how often open fulfillment records are polled
	StatusInterval time.Duration

	// InventoryInterval is how often supplier stock is reconciled
	InventoryInterval time.Duration

	// RetryInterval is how often FAILED forwards are re-attempted
	RetryInterval time.Duration

	// SweepTimeout is the maximum time for a single sweep run
	SweepTimeout time.Duration
}

// DefaultSweepSchedulerConfig returns default configuration
func DefaultSweepSchedulerConfig() SweepSchedulerConfig {
	return SweepSchedulerConfig{
		Enabled:           true,
		StatusInterval:    30 * time.Minute,
		InventoryInterval: 30 * time.Minute,
		RetryInterval:     2 * time.Minute,
		SweepTimeout:      10 * time.Minute,
	}
}

// NewSweepScheduler creates a new sweep scheduler
func NewSweepScheduler(
	status StatusSweeper,
	inventory InventorySweeper,
	retry RetrySweeper,
	logger *zap.Logger,
	config SweepSchedulerConfig,
) *SweepScheduler {
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = 10 * time.Minute
	}
	return &SweepScheduler{
		status:    status,
		inventory: inventory,
		retry:     retry,
		logger:    logger,
		config:    config,
	}
}

// Start starts the sweep loops
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Sweep scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(3)
	go s.runLoop(ctx, "status", s.config.StatusInterval, s.executeStatusSweep)
	go s.runLoop(ctx, "inventory", s.config.InventoryInterval, s.executeInventorySweep)
	go s.runLoop(ctx, "retry", s.config.RetryInterval, s.executeRetrySweep)

	s.logger.Info("Sweep scheduler started",
		zap.Duration("status_interval", s.config.StatusInterval),
		zap.Duration("inventory_interval", s.config.InventoryInterval),
		zap.Duration("retry_interval", s.config.RetryInterval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	// Wait for loops to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// runLoop runs one sweep immediately, then ticks on its interval until the
// context is cancelled. The immediate pass catches up on anything missed
// while the process was down.
func (s *SweepScheduler) runLoop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sweep loop stopping", zap.String("sweep", name))
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

// executeStatusSweep runs one status reconciliation pass
func (s *SweepScheduler) executeStatusSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	start := time.Now()
	stats, err := s.status.SyncStatuses(sweepCtx)
	if err != nil {
		s.logger.Error("Status sweep failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Status sweep finished",
		zap.Duration("duration", time.Since(start)),
		zap.Int("scanned", stats.Scanned),
		zap.Int("updated", stats.Updated),
		zap.Int("failures", stats.Failures),
	)
}

// executeInventorySweep runs one inventory reconciliation pass
func (s *SweepScheduler) executeInventorySweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	start := time.Now()
	stats, err := s.inventory.SyncInventory(sweepCtx)
	if err != nil {
		s.logger.Error("Inventory sweep failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Inventory sweep finished",
		zap.Duration("duration", time.Since(start)),
		zap.Int("scanned", stats.Scanned),
		zap.Int("updated", stats.Updated),
		zap.Int("failures", stats.Failures),
	)
}

// executeRetrySweep re-attempts FAILED forwards once
func (s *SweepScheduler) executeRetrySweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	start := time.Now()
	stats, err := s.retry.RetryFailed(sweepCtx)
	if err != nil {
		s.logger.Error("Retry sweep failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	if stats.Scanned > 0 {
		s.logger.Info("Retry sweep finished",
			zap.Duration("duration", time.Since(start)),
			zap.Int("scanned", stats.Scanned),
			zap.Int("recovered", stats.Recovered),
			zap.Int("still_failed", stats.StillFailed),
		)
	}
}

// TriggerStatusSweep runs an immediate status reconciliation pass
func (s *SweepScheduler) TriggerStatusSweep(ctx context.Context) error {
	return s.trigger(ctx, s.executeStatusSweep)
}

// TriggerInventorySweep runs an immediate inventory reconciliation pass
func (s *SweepScheduler) TriggerInventorySweep(ctx context.Context) error {
	return s.trigger(ctx, s.executeInventorySweep)
}

// TriggerRetrySweep runs an immediate retry pass
func (s *SweepScheduler) TriggerRetrySweep(ctx context.Context) error {
	return s.trigger(ctx, s.executeRetrySweep)
}

func (s *SweepScheduler) trigger(ctx context.Context, sweep func(context.Context)) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	// Run in a goroutine to not block the caller
	go func() {
		defer s.wg.Done()
		sweep(ctx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *SweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
