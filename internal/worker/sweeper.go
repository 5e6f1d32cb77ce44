// Package worker runs the background jobs of the booking service.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cinebooking/internal/infra/lock"
	"cinebooking/internal/usecase/commands"
)

const defaultSweepInterval = time.Minute

type SweeperConfig struct {
	Interval time.Duration
	LockKey  string
	LockTTL  time.Duration
}

// Sweeper cancels lapsed holds on a fixed interval. With a shared locker only
// one replica sweeps per tick; the others skip it.
type Sweeper struct {
	expiry commands.ExpiryCommands
	locker lock.Locker
	cfg    SweeperConfig
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewSweeper(expiry commands.ExpiryCommands, locker lock.Locker, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = cfg.Interval
	}
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{expiry: expiry, locker: locker, cfg: cfg, logger: logger}
}

// Start launches the loop. The first sweep runs immediately.
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			s.RunOnce(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	s.logger.Info("expiry sweeper started", "interval", s.cfg.Interval.String())
}

// Stop ends the loop and waits for an in-flight sweep, or for ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.once.Do(s.cancel)
	select {
	case <-s.done:
		s.logger.Info("expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep if this instance wins the lock.
func (s *Sweeper) RunOnce(ctx context.Context) {
	release, ok, err := s.locker.TryAcquire(ctx, s.cfg.LockKey, s.cfg.LockTTL)
	if err != nil {
		s.logger.Warn("sweep lock unavailable, skipping tick", "error", err.Error())
		return
	}
	if !ok {
		s.logger.Debug("another instance holds the sweep lock")
		return
	}
	defer func() {
		// the lease must be returned even when ctx is already cancelled
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release sweep lock", "error", err.Error())
		}
	}()

	if _, err := s.expiry.SweepExpired(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("expiry sweep failed", "error", err.Error())
	}
}
