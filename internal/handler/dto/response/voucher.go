package response

import (
	"time"

	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type VoucherResponse struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	MaxDiscount   *int64     `json:"max_discount,omitempty"`
	MinOrderValue int64      `json:"min_order_value"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidTo       *time.Time `json:"valid_to,omitempty"`
	Description   string     `json:"description,omitempty"`
}

func FromVoucherList(views []*queries.VoucherView) []*VoucherResponse {
	res := make([]*VoucherResponse, 0, len(views))
	if err := copier.Copy(&res, &views); err != nil {
		panic(err)
	}
	return res
}

type VoucherPreviewResponse struct {
	Code           string `json:"code"`
	OrderTotal     int64  `json:"order_total"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalPrice     int64  `json:"final_price"`
	Remaining      int64  `json:"remaining"`
}

func FromVoucherPreview(p *commands.VoucherPreview) *VoucherPreviewResponse {
	return &VoucherPreviewResponse{
		Code:           p.Code,
		OrderTotal:     p.OrderTotal,
		DiscountAmount: p.DiscountAmount,
		FinalPrice:     p.FinalPrice,
		Remaining:      max(p.UsageLimit-p.UsedCount, 0),
	}
}

// VoucherRejectedDetail tells the client which check failed.
type VoucherRejectedDetail struct {
	Reason string `json:"reason"`
}
