package shared

import (
	"context"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/loyalty"
	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrConflict means concurrent writers kept invalidating the transaction until retries ran out.
var ErrConflict = errs.New("transaction conflict: retries exhausted")

type UnitOfWork interface {
	// Within: optimistic transaction over several documents, retried on write conflicts
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads: point reads and queries outside a transaction
	Reads() Reads
}

// Tx hands out repositories bound to one transaction attempt. Nothing read or
// written through it is visible to others until Within returns nil.
type Tx interface {
	Showtimes() ShowtimeRepository
	Bookings() BookingRepository
	Vouchers() VoucherRepository
	Customers() CustomerRepository
}

// Repositories report a missing document with infra.KindNotFound. Loyalty
// accounts are the exception: an unknown customer gets an empty account.
type ShowtimeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*showtime.Showtime, error)
	Save(ctx context.Context, st *showtime.Showtime) error
}

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Create(ctx context.Context, b *booking.Booking) error
	Save(ctx context.Context, b *booking.Booking) error
}

type VoucherRepository interface {
	FindByCode(ctx context.Context, code voucher.Code) (*voucher.Voucher, error)
	Save(ctx context.Context, v *voucher.Voucher) error
}

type CustomerRepository interface {
	LoyaltyAccount(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error)
	SaveLoyaltyAccount(ctx context.Context, acc *loyalty.Account) error
}

type Reads interface {
	BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	BookingsByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*booking.Booking, error)
	// ExpiredPendingBookings returns PENDING bookings whose deadline is strictly before now, oldest first.
	ExpiredPendingBookings(ctx context.Context, now time.Time, limit int) ([]*booking.Booking, error)
	VoucherByCode(ctx context.Context, code voucher.Code) (*voucher.Voucher, error)
	// ActiveVouchers returns switched-on vouchers not past their end date, ordered by code.
	ActiveVouchers(ctx context.Context, now time.Time) ([]*voucher.Voucher, error)
	ShowtimeByID(ctx context.Context, id uuid.UUID) (*showtime.Showtime, error)
	LoyaltyAccount(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error)
}
