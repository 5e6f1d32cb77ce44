package booking

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

const DefaultHoldDuration = 10 * time.Minute

var (
	ErrNotPending       = errors.New("booking is not pending")
	ErrInvalidHold      = errors.New("hold duration must be positive")
	ErrMissingCustomer  = errors.New("customer is required")
	ErrMissingShowtime  = errors.New("showtime is required")
	ErrMissingReceipt   = errors.New("receipt is required")
	ErrMissingPayMethod = errors.New("payment method is required")
)

type Booking struct {
	id            uuid.UUID
	customerID    uuid.UUID
	showtimeID    uuid.UUID
	showtimeStart time.Time
	seats         []string
	seatPrice     int64
	pricing       Pricing
	voucherCode   *string
	status        Status
	createdAt     time.Time
	expiresAt     time.Time
	paymentMethod *string
	paidAt        *time.Time
	receipt       *string
	cancelledAt   *time.Time
	updatedAt     time.Time
}

type NewParams struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	ShowtimeID    uuid.UUID
	ShowtimeStart time.Time
	Seats         []string
	Pricing       Pricing
	VoucherCode   *string
	Now           time.Time
	HoldDuration  time.Duration
}

// New opens a PENDING hold that expires HoldDuration after Now.
func New(p NewParams) (*Booking, error) {
	if p.CustomerID == uuid.Nil {
		return nil, ErrMissingCustomer
	}
	if p.ShowtimeID == uuid.Nil {
		return nil, ErrMissingShowtime
	}
	if len(p.Seats) == 0 {
		return nil, ErrNoSeats
	}
	if p.HoldDuration <= 0 {
		return nil, ErrInvalidHold
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Booking{
		id:            id,
		customerID:    p.CustomerID,
		showtimeID:    p.ShowtimeID,
		showtimeStart: p.ShowtimeStart,
		seats:         slices.Clone(p.Seats),
		seatPrice:     p.Pricing.PerSeat(len(p.Seats)),
		pricing:       p.Pricing,
		voucherCode:   p.VoucherCode,
		status:        StatusPending,
		createdAt:     p.Now,
		expiresAt:     p.Now.Add(p.HoldDuration),
		updatedAt:     p.Now,
	}, nil
}

type Snapshot struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	ShowtimeID    uuid.UUID
	ShowtimeStart time.Time
	Seats         []string
	SeatPrice     int64
	OriginalPrice int64
	Discount      int64
	VoucherCode   *string
	Status        Status
	CreatedAt     time.Time
	ExpiresAt     time.Time
	PaymentMethod *string
	PaidAt        *time.Time
	Receipt       *string
	CancelledAt   *time.Time
	UpdatedAt     time.Time
}

func Reconstruct(s Snapshot) (*Booking, error) {
	pricing, err := NewPricing(s.OriginalPrice, s.Discount)
	if err != nil {
		return nil, errors.Join(ErrInvalidPricing, err)
	}
	return &Booking{
		id:            s.ID,
		customerID:    s.CustomerID,
		showtimeID:    s.ShowtimeID,
		showtimeStart: s.ShowtimeStart,
		seats:         slices.Clone(s.Seats),
		seatPrice:     s.SeatPrice,
		pricing:       pricing,
		voucherCode:   s.VoucherCode,
		status:        s.Status,
		createdAt:     s.CreatedAt,
		expiresAt:     s.ExpiresAt,
		paymentMethod: s.PaymentMethod,
		paidAt:        s.PaidAt,
		receipt:       s.Receipt,
		cancelledAt:   s.CancelledAt,
		updatedAt:     s.UpdatedAt,
	}, nil
}

func (b *Booking) Snapshot() Snapshot {
	return Snapshot{
		ID:            b.id,
		CustomerID:    b.customerID,
		ShowtimeID:    b.showtimeID,
		ShowtimeStart: b.showtimeStart,
		Seats:         slices.Clone(b.seats),
		SeatPrice:     b.seatPrice,
		OriginalPrice: b.pricing.Original(),
		Discount:      b.pricing.Discount(),
		VoucherCode:   b.voucherCode,
		Status:        b.status,
		CreatedAt:     b.createdAt,
		ExpiresAt:     b.expiresAt,
		PaymentMethod: b.paymentMethod,
		PaidAt:        b.paidAt,
		Receipt:       b.receipt,
		CancelledAt:   b.cancelledAt,
		UpdatedAt:     b.updatedAt,
	}
}

func (b *Booking) MarkPaid(method string, at time.Time, receipt string) error {
	if b.status != StatusPending {
		return ErrNotPending
	}
	if method == "" {
		return ErrMissingPayMethod
	}
	if receipt == "" {
		return ErrMissingReceipt
	}
	b.status = StatusPaid
	b.paymentMethod = &method
	b.paidAt = &at
	b.receipt = &receipt
	b.updatedAt = at
	return nil
}

func (b *Booking) Cancel(at time.Time) error {
	if b.status != StatusPending {
		return ErrNotPending
	}
	b.status = StatusCancelled
	b.cancelledAt = &at
	b.updatedAt = at
	return nil
}

// IsExpired reports whether a pending hold has passed its deadline.
func (b *Booking) IsExpired(now time.Time) bool {
	return b.status == StatusPending && b.expiresAt.Before(now)
}

func (b *Booking) OwnedBy(customerID uuid.UUID) bool {
	return b.customerID == customerID
}

func (b *Booking) ID() uuid.UUID             { return b.id }
func (b *Booking) CustomerID() uuid.UUID     { return b.customerID }
func (b *Booking) ShowtimeID() uuid.UUID     { return b.showtimeID }
func (b *Booking) ShowtimeStart() time.Time  { return b.showtimeStart }
func (b *Booking) Seats() []string           { return slices.Clone(b.seats) }
func (b *Booking) SeatPrice() int64          { return b.seatPrice }
func (b *Booking) Pricing() Pricing          { return b.pricing }
func (b *Booking) OriginalPrice() int64      { return b.pricing.Original() }
func (b *Booking) DiscountAmount() int64     { return b.pricing.Discount() }
func (b *Booking) FinalPrice() int64         { return b.pricing.Final() }
func (b *Booking) VoucherCode() *string      { return b.voucherCode }
func (b *Booking) Status() Status            { return b.status }
func (b *Booking) CreatedAt() time.Time      { return b.createdAt }
func (b *Booking) ExpiresAt() time.Time      { return b.expiresAt }
func (b *Booking) PaymentMethod() *string    { return b.paymentMethod }
func (b *Booking) PaidAt() *time.Time        { return b.paidAt }
func (b *Booking) Receipt() *string          { return b.receipt }
func (b *Booking) CancelledAt() *time.Time   { return b.cancelledAt }
func (b *Booking) UpdatedAt() time.Time      { return b.updatedAt }
func (b *Booking) IsPaid() bool              { return b.status == StatusPaid }
func (b *Booking) IsCancelled() bool         { return b.status == StatusCancelled }
func (b *Booking) IsPending() bool           { return b.status == StatusPending }
