package voucher

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCode    = errors.New("invalid voucher code format")
	ErrInvalidKind    = errors.New("unknown discount kind")
	ErrInvalidValue   = errors.New("discount value must be positive")
	ErrInvalidPercent = errors.New("percentage discount must be between 1 and 100")
	ErrInvalidLimit   = errors.New("usage limit must be positive")
	ErrInvalidWindow  = errors.New("validity window ends before it starts")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

type Code string

// NewCode normalises user input so "save10 " and "SAVE10" resolve to the same voucher.
func NewCode(code string) (Code, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type Kind string

const (
	KindFixed   Kind = "FIXED"
	KindPercent Kind = "PERCENT"
)

func (k Kind) IsValid() bool {
	return k == KindFixed || k == KindPercent
}

type Discount struct {
	kind        Kind
	value       int64
	maxDiscount *int64
}

func NewFixedDiscount(amount int64) (Discount, error) {
	if amount <= 0 {
		return Discount{}, ErrInvalidValue
	}
	return Discount{kind: KindFixed, value: amount}, nil
}

// NewPercentageDiscount takes a whole percentage and an optional cap on the discount amount.
func NewPercentageDiscount(percent int64, maxDiscount *int64) (Discount, error) {
	if percent <= 0 || percent > 100 {
		return Discount{}, ErrInvalidPercent
	}
	if maxDiscount != nil && *maxDiscount <= 0 {
		maxDiscount = nil
	}
	return Discount{kind: KindPercent, value: percent, maxDiscount: maxDiscount}, nil
}

func NewDiscount(kind Kind, value int64, maxDiscount *int64) (Discount, error) {
	switch kind {
	case KindFixed:
		return NewFixedDiscount(value)
	case KindPercent:
		return NewPercentageDiscount(value, maxDiscount)
	default:
		return Discount{}, ErrInvalidKind
	}
}

// AmountFor never exceeds orderTotal and is rounded down to a whole currency unit.
func (d Discount) AmountFor(orderTotal int64) int64 {
	if orderTotal <= 0 {
		return 0
	}

	var amount int64
	switch d.kind {
	case KindPercent:
		amount = orderTotal * d.value / 100
		if d.maxDiscount != nil && amount > *d.maxDiscount {
			amount = *d.maxDiscount
		}
	default:
		amount = d.value
	}

	if amount > orderTotal {
		return orderTotal
	}
	return amount
}

func (d Discount) Kind() Kind            { return d.kind }
func (d Discount) Value() int64          { return d.value }
func (d Discount) MaxDiscount() *int64   { return d.maxDiscount }
func (d Discount) IsPercentage() bool    { return d.kind == KindPercent }
