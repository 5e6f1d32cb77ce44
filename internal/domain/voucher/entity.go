package voucher

import (
	"errors"
	"time"

	"cinebooking/internal/pkg/errs"
)

// ErrInvalid marks every reason a voucher cannot be applied to an order.
var ErrInvalid = errors.New("voucher cannot be applied")

var (
	ErrNotFound     = errors.New("voucher not found")
	ErrInactive     = errors.New("voucher is inactive")
	ErrNotStarted   = errors.New("voucher is not yet valid")
	ErrExpired      = errors.New("voucher has expired")
	ErrLimitReached = errors.New("voucher usage limit reached")
	ErrBelowMinimum = errors.New("order total below voucher minimum")
)

type Voucher struct {
	code          Code
	discount      Discount
	minOrderValue int64
	usageLimit    int64
	usedCount     int64
	validFrom     *time.Time
	validTo       *time.Time
	active        bool
	description   string
	createdAt     time.Time
	updatedAt     time.Time
}

type Params struct {
	Code          string
	Kind          Kind
	Value         int64
	MaxDiscount   *int64
	MinOrderValue int64
	UsageLimit    int64
	UsedCount     int64
	ValidFrom     *time.Time
	ValidTo       *time.Time
	Active        bool
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New validates administrative input. Stored vouchers come back through the same path.
func New(p Params) (*Voucher, error) {
	code, err := NewCode(p.Code)
	if err != nil {
		return nil, err
	}
	discount, err := NewDiscount(p.Kind, p.Value, p.MaxDiscount)
	if err != nil {
		return nil, err
	}
	if p.UsageLimit <= 0 {
		return nil, ErrInvalidLimit
	}
	if p.UsedCount < 0 || p.MinOrderValue < 0 {
		return nil, ErrInvalidValue
	}
	if p.ValidFrom != nil && p.ValidTo != nil && p.ValidTo.Before(*p.ValidFrom) {
		return nil, ErrInvalidWindow
	}

	return &Voucher{
		code:          code,
		discount:      discount,
		minOrderValue: p.MinOrderValue,
		usageLimit:    p.UsageLimit,
		usedCount:     p.UsedCount,
		validFrom:     p.ValidFrom,
		validTo:       p.ValidTo,
		active:        p.Active,
		description:   p.Description,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

type Quote struct {
	Code       Code
	OrderTotal int64
	Discount   int64
	Final      int64
	UsedCount  int64
}

// Quote checks the voucher against an order and computes the discount without
// consuming a redemption. Checks run in a fixed order so callers see one stable reason.
func (v *Voucher) Quote(now time.Time, orderTotal int64) (Quote, error) {
	if err := v.checkUsable(now); err != nil {
		return Quote{}, err
	}
	if orderTotal < v.minOrderValue {
		return Quote{}, errs.Mark(ErrBelowMinimum, ErrInvalid)
	}

	discount := v.discount.AmountFor(orderTotal)
	return Quote{
		Code:       v.code,
		OrderTotal: orderTotal,
		Discount:   discount,
		Final:      orderTotal - discount,
		UsedCount:  v.usedCount,
	}, nil
}

// Redeem consumes one use. It re-checks the limit so the counter can never pass it.
func (v *Voucher) Redeem(at time.Time) error {
	if v.usedCount >= v.usageLimit {
		return errs.Mark(ErrLimitReached, ErrInvalid)
	}
	v.usedCount++
	v.updatedAt = at
	return nil
}

// OnOffer reports whether the voucher belongs in the customer-facing list:
// switched on and not past its end date. Vouchers that have not started yet or
// are used up are still listed; Quote gives the precise reason at checkout.
func (v *Voucher) OnOffer(now time.Time) bool {
	return v.active && (v.validTo == nil || !now.After(*v.validTo))
}

func (v *Voucher) checkUsable(now time.Time) error {
	switch {
	case !v.active:
		return errs.Mark(ErrInactive, ErrInvalid)
	case v.validFrom != nil && now.Before(*v.validFrom):
		return errs.Mark(ErrNotStarted, ErrInvalid)
	case v.validTo != nil && now.After(*v.validTo):
		return errs.Mark(ErrExpired, ErrInvalid)
	case v.usedCount >= v.usageLimit:
		return errs.Mark(ErrLimitReached, ErrInvalid)
	}
	return nil
}

// Reason gives a stable machine-readable code for an application failure.
func Reason(err error) string {
	switch {
	case errs.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errs.Is(err, ErrInactive):
		return "INACTIVE"
	case errs.Is(err, ErrNotStarted):
		return "NOT_STARTED"
	case errs.Is(err, ErrExpired):
		return "EXPIRED"
	case errs.Is(err, ErrLimitReached):
		return "LIMIT_REACHED"
	case errs.Is(err, ErrBelowMinimum):
		return "BELOW_MINIMUM"
	default:
		return ""
	}
}

func (v *Voucher) Code() Code             { return v.code }
func (v *Voucher) Discount() Discount     { return v.discount }
func (v *Voucher) MinOrderValue() int64   { return v.minOrderValue }
func (v *Voucher) UsageLimit() int64      { return v.usageLimit }
func (v *Voucher) UsedCount() int64       { return v.usedCount }
func (v *Voucher) ValidFrom() *time.Time  { return v.validFrom }
func (v *Voucher) ValidTo() *time.Time    { return v.validTo }
func (v *Voucher) IsActive() bool         { return v.active }
func (v *Voucher) Description() string    { return v.description }
func (v *Voucher) CreatedAt() time.Time   { return v.createdAt }
func (v *Voucher) UpdatedAt() time.Time   { return v.updatedAt }
