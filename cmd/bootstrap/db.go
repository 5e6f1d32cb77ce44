package bootstrap

import (
	"context"
	"log/slog"

	"cinebooking/internal/infra/db"
	"cinebooking/internal/infra/docstore"
	"cinebooking/internal/pkg/config"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"go.uber.org/fx"
)

const (
	storeDriverPostgres = "postgres"
	storeDriverMemory   = "memory"
)

var errUnknownStoreDriver = errs.New("unknown store driver")

var DBModule = fx.Module("db",
	fx.Provide(
		NewStore,
		func(s *docstore.Store) shared.UnitOfWork { return s },
	),
)

// NewStore opens the document store selected by STORE_DRIVER. The postgres
// backend applies its schema before the store is handed out.
func NewStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*docstore.Store, error) {
	opts := []docstore.Option{
		docstore.WithMaxRetries(cfg.Store.MaxTxRetries),
		docstore.WithRetryBase(cfg.Store.RetryBase),
		docstore.WithLogger(logger),
	}

	switch cfg.Store.Driver {
	case storeDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return docstore.NewMemoryStore(opts...), nil
	case storeDriverPostgres:
	default:
		return nil, errs.Wrapf(errUnknownStoreDriver, "%q", cfg.Store.Driver)
	}

	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := docstore.Migrate(ctx, pool); err != nil {
		cleanup()
		return nil, err
	}
	store := docstore.NewPostgresStore(pool, opts...)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			store.Close()
			return nil
		},
	})

	return store, nil
}
