package components

import (
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/config"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/usecase/queries"
	"cinebooking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config) commands.BookingCommands {
			return commands.NewBookingUseCase(uow, clk, cfg.Booking.HoldDuration)
		},
		func(uow shared.UnitOfWork, clk clock.Clock, pub shared.EventPublisher, cfg config.Config) commands.ExpiryCommands {
			return commands.NewExpiryUseCase(uow, clk, pub, cfg.Booking.SweepBatchSize)
		},
		commands.NewSettlementUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewLoyaltyQueries,
		queries.NewVoucherQueries,
	),
)
