package components

import (
	"context"
	"log/slog"

	"cinebooking/internal/infra/lock"
	"cinebooking/internal/pkg/config"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(startSweeper),
)

func startSweeper(lc fx.Lifecycle, cfg config.Config, expiry commands.ExpiryCommands, locker lock.Locker, logger *slog.Logger) {
	if !cfg.Booking.SweepEnabled {
		logger.Info("expiry sweeper disabled")
		return
	}
	sweeper := worker.NewSweeper(expiry, locker, worker.SweeperConfig{
		Interval: cfg.Booking.SweepInterval,
		LockKey:  cfg.Redis.SweepLockKey,
		LockTTL:  cfg.Redis.SweepLockTTL,
	}, logger)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sweeper.Stop(ctx)
		},
	})
}
