package loyalty

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PointRatePercent of every settled amount is credited as points, rounded down.
const PointRatePercent = 5

var ErrNegativeAmount = errors.New("accrual amount cannot be negative")

type Account struct {
	customerID uuid.UUID
	spending   int64
	points     int64
	rank       Rank
	updatedAt  time.Time
}

func NewAccount(customerID uuid.UUID) *Account {
	return &Account{customerID: customerID, rank: RankStandard}
}

func Reconstruct(customerID uuid.UUID, spending, points int64, rank Rank, updatedAt time.Time) *Account {
	if !rank.IsValid() {
		rank = RankFor(spending)
	}
	return &Account{
		customerID: customerID,
		spending:   spending,
		points:     points,
		rank:       rank,
		updatedAt:  updatedAt,
	}
}

type Accrual struct {
	Points       int64
	PreviousRank Rank
	Rank         Rank
}

func (a Accrual) Promoted() bool {
	return a.Rank != a.PreviousRank
}

// Accrue credits one settled purchase. Rank only moves up.
func (a *Account) Accrue(amount int64, at time.Time) (Accrual, error) {
	if amount < 0 {
		return Accrual{}, ErrNegativeAmount
	}

	points := amount * PointRatePercent / 100
	previous := a.rank

	a.spending += amount
	a.points += points
	if next := RankFor(a.spending); !a.rank.AtLeast(next) {
		a.rank = next
	}
	a.updatedAt = at

	return Accrual{Points: points, PreviousRank: previous, Rank: a.rank}, nil
}

func (a *Account) CustomerID() uuid.UUID { return a.customerID }
func (a *Account) Spending() int64       { return a.spending }
func (a *Account) Points() int64         { return a.points }
func (a *Account) Rank() Rank            { return a.rank }
func (a *Account) UpdatedAt() time.Time  { return a.updatedAt }
