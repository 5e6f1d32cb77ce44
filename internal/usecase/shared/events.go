package shared

//go:generate mockgen -source=events.go -destination=../../../tests/mock/shared/events.go -package=sharedmock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingExpired   EventType = "booking.expired"
)

type BookingEvent struct {
	Type          EventType `json:"type"`
	BookingID     uuid.UUID `json:"bookingId"`
	CustomerID    uuid.UUID `json:"customerId"`
	ShowtimeID    uuid.UUID `json:"showtimeId"`
	Seats         []string  `json:"seats"`
	FinalPrice    int64     `json:"finalPrice"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// EventPublisher delivers booking events after commit. Delivery is best effort:
// a publish failure never undoes the committed state.
type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
