package queries

//go:generate mockgen -source=voucher.go -destination=../../../tests/mock/queries/voucher.go -package=queriesmock

import (
	"context"
	"time"

	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"
)

// VoucherView is what a customer sees when browsing promotions. Usage counters stay internal.
type VoucherView struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	MaxDiscount   *int64     `json:"max_discount,omitempty"`
	MinOrderValue int64      `json:"min_order_value"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidTo       *time.Time `json:"valid_to,omitempty"`
	Description   string     `json:"description,omitempty"`
}

func NewVoucherView(v *voucher.Voucher) *VoucherView {
	d := v.Discount()
	return &VoucherView{
		Code:          v.Code().String(),
		DiscountType:  string(d.Kind()),
		DiscountValue: d.Value(),
		MaxDiscount:   d.MaxDiscount(),
		MinOrderValue: v.MinOrderValue(),
		ValidFrom:     v.ValidFrom(),
		ValidTo:       v.ValidTo(),
		Description:   v.Description(),
	}
}

type VoucherQueries interface {
	ListActive(ctx context.Context) ([]*VoucherView, error)
}

type voucherQueriesImpl struct {
	reads shared.Reads
	clock clock.Clock
}

func NewVoucherQueries(uow shared.UnitOfWork, clk clock.Clock) VoucherQueries {
	return &voucherQueriesImpl{reads: uow.Reads(), clock: clk}
}

func (q *voucherQueriesImpl) ListActive(ctx context.Context) ([]*VoucherView, error) {
	vouchers, err := q.reads.ActiveVouchers(ctx, q.clock.Now())
	if err != nil {
		return nil, errs.Wrap(err, "list active vouchers")
	}
	out := make([]*VoucherView, len(vouchers))
	for i, v := range vouchers {
		out[i] = NewVoucherView(v)
	}
	return out, nil
}
