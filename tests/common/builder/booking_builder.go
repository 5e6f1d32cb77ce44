//go:build unit || e2e

package builder

import (
	"time"

	"cinebooking/internal/domain/booking"
	reqdto "cinebooking/internal/handler/dto/request"
	"cinebooking/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	ShowtimeID    uuid.UUID
	ShowtimeStart time.Time
	Seats         []string
	OriginalPrice int64
	Discount      int64
	VoucherCode   *string
	Now           time.Time
	HoldDuration  time.Duration
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		ShowtimeID:    uuid.New(),
		ShowtimeStart: now.Add(48 * time.Hour),
		Seats:         []string{"A1", "A2"},
		OriginalPrice: 200_000,
		Now:           now,
		HoldDuration:  booking.DefaultHoldDuration,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	pricing, err := booking.NewPricing(b.OriginalPrice, b.Discount)
	if err != nil {
		return nil, err
	}
	return booking.New(booking.NewParams{
		ID:            b.ID,
		CustomerID:    b.CustomerID,
		ShowtimeID:    b.ShowtimeID,
		ShowtimeStart: b.ShowtimeStart,
		Seats:         b.Seats,
		Pricing:       pricing,
		VoucherCode:   b.VoucherCode,
		Now:           b.Now,
		HoldDuration:  b.HoldDuration,
	})
}

func (b *BookingBuilder) MustBuild() *booking.Booking {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return bk
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:             b.ID,
		CustomerID:     b.CustomerID,
		ShowtimeID:     b.ShowtimeID,
		ShowtimeStart:  b.ShowtimeStart,
		Seats:          b.Seats,
		SeatPrice:      b.OriginalPrice / int64(len(b.Seats)),
		OriginalPrice:  b.OriginalPrice,
		DiscountAmount: b.Discount,
		FinalPrice:     b.OriginalPrice - b.Discount,
		VoucherCode:    b.VoucherCode,
		Status:         string(booking.StatusPending),
		CreatedAt:      b.Now,
		ExpiresAt:      b.Now.Add(b.HoldDuration),
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		ShowtimeID:  b.ShowtimeID,
		Seats:       b.Seats,
		VoucherCode: b.VoucherCode,
	}
}
