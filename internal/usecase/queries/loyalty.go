package queries

//go:generate mockgen -source=loyalty.go -destination=../../../tests/mock/queries/loyalty.go -package=queriesmock

import (
	"context"
	"time"

	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"github.com/google/uuid"
)

type LoyaltyView struct {
	CustomerID    uuid.UUID `json:"customer_id"`
	TotalSpending int64     `json:"total_spending"`
	Points        int64     `json:"points"`
	Rank          string    `json:"rank"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type LoyaltyQueries interface {
	GetAccount(ctx context.Context, customerID uuid.UUID) (*LoyaltyView, error)
}

type loyaltyQueriesImpl struct {
	reads shared.Reads
}

func NewLoyaltyQueries(uow shared.UnitOfWork) LoyaltyQueries {
	return &loyaltyQueriesImpl{reads: uow.Reads()}
}

func (q *loyaltyQueriesImpl) GetAccount(ctx context.Context, customerID uuid.UUID) (*LoyaltyView, error) {
	acc, err := q.reads.LoyaltyAccount(ctx, customerID)
	if err != nil {
		return nil, errs.Wrap(err, "load loyalty account")
	}
	return &LoyaltyView{
		CustomerID:    acc.CustomerID(),
		TotalSpending: acc.Spending(),
		Points:        acc.Points(),
		Rank:          acc.Rank().String(),
		UpdatedAt:     acc.UpdatedAt(),
	}, nil
}
