package response

import (
	"time"

	"cinebooking/internal/usecase/queries"
)

type LoyaltyResponse struct {
	TotalSpending int64      `json:"total_spending"`
	Points        int64      `json:"points"`
	Rank          string     `json:"rank"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func FromLoyaltyView(v *queries.LoyaltyView) *LoyaltyResponse {
	res := &LoyaltyResponse{
		TotalSpending: v.TotalSpending,
		Points:        v.Points,
		Rank:          v.Rank,
	}
	if !v.UpdatedAt.IsZero() {
		at := v.UpdatedAt
		res.UpdatedAt = &at
	}
	return res
}
