package queries

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/queries/booking.go -package=queriesmock

import (
	"context"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/infra"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrBookingAccess   = errs.New("booking belongs to another customer")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// BookingView is the read model handed to callers. Amounts are in the smallest currency unit.
type BookingView struct {
	ID             uuid.UUID  `json:"id"`
	CustomerID     uuid.UUID  `json:"customer_id"`
	ShowtimeID     uuid.UUID  `json:"showtime_id"`
	ShowtimeStart  time.Time  `json:"showtime_start"`
	Seats          []string   `json:"seats"`
	SeatPrice      int64      `json:"seat_price"`
	OriginalPrice  int64      `json:"original_price"`
	DiscountAmount int64      `json:"discount_amount"`
	FinalPrice     int64      `json:"final_price"`
	VoucherCode    *string    `json:"voucher_code,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	PaymentMethod  *string    `json:"payment_method,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	Receipt        *string    `json:"receipt,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

func NewBookingView(b *booking.Booking) *BookingView {
	return &BookingView{
		ID:             b.ID(),
		CustomerID:     b.CustomerID(),
		ShowtimeID:     b.ShowtimeID(),
		ShowtimeStart:  b.ShowtimeStart(),
		Seats:          b.Seats(),
		SeatPrice:      b.SeatPrice(),
		OriginalPrice:  b.OriginalPrice(),
		DiscountAmount: b.DiscountAmount(),
		FinalPrice:     b.FinalPrice(),
		VoucherCode:    b.VoucherCode(),
		Status:         b.Status().String(),
		CreatedAt:      b.CreatedAt(),
		ExpiresAt:      b.ExpiresAt(),
		PaymentMethod:  b.PaymentMethod(),
		PaidAt:         b.PaidAt(),
		Receipt:        b.Receipt(),
		CancelledAt:    b.CancelledAt(),
	}
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*BookingView, error)
}

type bookingQueriesImpl struct {
	reads shared.Reads
}

func NewBookingQueries(uow shared.UnitOfWork) BookingQueries {
	return &bookingQueriesImpl{reads: uow.Reads()}
}

// GetByID only shows a booking to the customer who made it.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error) {
	b, err := q.reads.BookingByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Wrap(err, "load booking")
	}
	if !b.OwnedBy(actor) {
		return nil, ErrBookingAccess
	}
	return NewBookingView(b), nil
}

func (q *bookingQueriesImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*BookingView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	list, err := q.reads.BookingsByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, errs.Wrap(err, "list customer bookings")
	}
	views := make([]*BookingView, len(list))
	for i, b := range list {
		views[i] = NewBookingView(b)
	}
	return views, nil
}
