// Package receipt issues and verifies settlement receipts: signed proof that a
// booking was paid, bound to the booking, its owner, its seats and the screening time.
package receipt

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidReceipt = errors.New("invalid receipt")

type Payload struct {
	BookingID     uuid.UUID
	CustomerID    uuid.UUID
	Seats         []string
	ShowtimeStart time.Time
	PaidAt        time.Time
}

type claims struct {
	BookingID  uuid.UUID `json:"bid"`
	CustomerID uuid.UUID `json:"uid"`
	Seats      []string  `json:"seats"`
	StartsAt   int64     `json:"time"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	name   string
}

func NewIssuer(secret, name string) *Issuer {
	return &Issuer{secret: []byte(secret), name: name}
}

func (i *Issuer) Issue(p Payload) (string, error) {
	seats := slices.Clone(p.Seats)
	slices.Sort(seats)

	c := claims{
		BookingID:  p.BookingID,
		CustomerID: p.CustomerID,
		Seats:      seats,
		StartsAt:   p.ShowtimeStart.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   i.name,
			Subject:  p.BookingID.String(),
			IssuedAt: jwt.NewNumericDate(p.PaidAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Verify authenticates a receipt presented at the door. Receipts do not expire.
func (i *Issuer) Verify(token string) (*Payload, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidReceipt
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.name))
	if err != nil {
		return nil, ErrInvalidReceipt
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidReceipt
	}

	p := &Payload{
		BookingID:     c.BookingID,
		CustomerID:    c.CustomerID,
		Seats:         c.Seats,
		ShowtimeStart: time.Unix(c.StartsAt, 0).UTC(),
	}
	if c.IssuedAt != nil {
		p.PaidAt = c.IssuedAt.Time
	}
	return p, nil
}
