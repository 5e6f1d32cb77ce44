package components

import (
	"context"
	"log/slog"

	"cinebooking/internal/infra/events"
	"cinebooking/internal/infra/lock"
	"cinebooking/internal/infra/payment"
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/config"
	"cinebooking/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		clock.NewRealClock,
		NewEventPublisher,
		NewLocker,
		NewPaymentProviders,
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.EventPublisher, error) {
	pub, err := events.New(cfg.Events, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}

// NewLocker returns a redis lock when REDIS_ADDR is set. Without it every
// replica sweeps, which is safe but wasteful.
func NewLocker(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) lock.Locker {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured; sweep lock disabled")
		return lock.NoopLocker{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable at startup", "addr", cfg.Redis.Addr, "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return lock.NewRedisLocker(client)
}

func NewPaymentProviders(cfg config.Config, clk clock.Clock) []shared.PaymentProvider {
	return payment.Providers(cfg.Momo, clk)
}
