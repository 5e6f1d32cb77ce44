package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoSeats         = errors.New("at least one seat is required")
	ErrDuplicateSeat   = errors.New("duplicate seat in selection")
	ErrTooManySeats    = errors.New("too many seats in one booking")
	ErrInvalidPricing  = errors.New("invalid booking pricing")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrDiscountTooHigh = errors.New("discount exceeds original price")
)

const MaxSeatsPerBooking = 10

// NormalizeSeatCodes trims and upper-cases seat codes and rejects empty or repeated selections.
func NormalizeSeatCodes(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, ErrNoSeats
	}
	if len(codes) > MaxSeatsPerBooking {
		return nil, ErrTooManySeats
	}

	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" {
			return nil, ErrNoSeats
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSeat, code)
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}

// Pricing holds the money side of a booking; Final is always Original minus Discount.
type Pricing struct {
	original int64
	discount int64
}

func NewPricing(original, discount int64) (Pricing, error) {
	if original < 0 || discount < 0 {
		return Pricing{}, ErrNegativeAmount
	}
	if discount > original {
		return Pricing{}, ErrDiscountTooHigh
	}
	return Pricing{original: original, discount: discount}, nil
}

func (p Pricing) Original() int64 { return p.original }
func (p Pricing) Discount() int64 { return p.discount }
func (p Pricing) Final() int64    { return p.original - p.discount }

// PerSeat is the average seat price, rounded down.
func (p Pricing) PerSeat(seats int) int64 {
	if seats <= 0 {
		return 0
	}
	return p.original / int64(seats)
}
