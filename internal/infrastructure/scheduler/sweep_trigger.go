package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweep is a periodic background task run by SweepTrigger: lock expiration,
// replenishment evaluation, and similar cross-tenant maintenance passes that
// run on a fixed interval rather than a daily clock time.
type Sweep struct {
	Name string
	Run  func(ctx context.Context) error
	// Interval overrides the trigger's master tick interval for this sweep
	// specifically. Zero means "run every tick" (the trigger's Interval).
	Interval time.Duration
}

// SweepTriggerConfig holds configuration for the sweep trigger
type SweepTriggerConfig struct {
	Interval time.Duration
}

// DefaultSweepTriggerConfig returns default sweep trigger configuration
func DefaultSweepTriggerConfig() SweepTriggerConfig {
	return SweepTriggerConfig{
		Interval: 5 * time.Minute,
	}
}

// SweepTrigger runs a fixed set of maintenance sweeps on a regular interval,
// independent of the daily report CronTrigger.
type SweepTrigger struct {
	config SweepTriggerConfig
	sweeps []Sweep
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	nextRun map[string]time.Time
}

// NewSweepTrigger creates a new sweep trigger for the given sweeps. Sweeps
// run in the order given, sequentially, on every tick.
func NewSweepTrigger(config SweepTriggerConfig, logger *zap.Logger, sweeps ...Sweep) *SweepTrigger {
	return &SweepTrigger{
		config:  config,
		sweeps:  sweeps,
		logger:  logger,
		nextRun: make(map[string]time.Time),
	}
}

// Start starts the sweep trigger
func (t *SweepTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sweep trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Int("sweep_count", len(t.sweeps)),
	)

	return nil
}

// Stop stops the sweep trigger
func (t *SweepTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *SweepTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *SweepTrigger) runOnce(ctx context.Context) {
	now := time.Now()
	for _, sweep := range t.sweeps {
		if sweep.Interval > 0 {
			if due, ok := t.nextRun[sweep.Name]; ok && now.Before(due) {
				continue
			}
			t.nextRun[sweep.Name] = now.Add(sweep.Interval)
		}

		start := time.Now()
		if err := sweep.Run(ctx); err != nil {
			t.logger.Error("Sweep failed",
				zap.String("sweep", sweep.Name),
				zap.Error(err),
			)
			continue
		}
		t.logger.Debug("Sweep completed",
			zap.String("sweep", sweep.Name),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// RunNow executes every registered sweep immediately, outside the ticker
// loop. Useful for manual triggering and tests.
func (t *SweepTrigger) RunNow(ctx context.Context) {
	t.runOnce(ctx)
}
