package commands

import (
	"context"
	"log/slog"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/pkg/ptr"
	"cinebooking/internal/usecase/shared"
)

// publishBookingEvent runs after commit. A failed publish is logged and dropped.
func publishBookingEvent(ctx context.Context, pub shared.EventPublisher, typ shared.EventType, b *booking.Booking, at time.Time) {
	if pub == nil {
		return
	}
	event := shared.BookingEvent{
		Type:          typ,
		BookingID:     b.ID(),
		CustomerID:    b.CustomerID(),
		ShowtimeID:    b.ShowtimeID(),
		Seats:         b.Seats(),
		FinalPrice:    b.FinalPrice(),
		PaymentMethod: ptr.Deref(b.PaymentMethod()),
		OccurredAt:    at,
	}
	if err := pub.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish booking event",
			"type", string(typ),
			"booking_id", b.ID().String(),
			"error", err.Error())
	}
}
