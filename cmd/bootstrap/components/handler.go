package components

import (
	"cinebooking/internal/handler"
	"cinebooking/internal/handler/api"
	"cinebooking/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewVoucherHandler,
		api.NewPaymentHandler,
		api.NewLoyaltyHandler,
		middleware.NewAuthMiddleware,
		func(b *api.BookingHandler, v *api.VoucherHandler, p *api.PaymentHandler, l *api.LoyaltyHandler) handler.Handlers {
			return handler.Handlers{Booking: b, Voucher: v, Payment: p, Loyalty: l}
		},
	),
	fx.Invoke(handler.NewRouter),
)
