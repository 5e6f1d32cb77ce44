//go:build unit || e2e

package builder

import (
	"time"

	"cinebooking/internal/domain/voucher"
)

type VoucherBuilder struct {
	Params voucher.Params
}

// NewVoucherBuilder starts from the SAVE10 promotion: 10% off capped at 20,000,
// minimum order 50,000, single use.
func NewVoucherBuilder() *VoucherBuilder {
	maxDiscount := int64(20_000)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	from := now.Add(-24 * time.Hour)
	to := now.Add(30 * 24 * time.Hour)
	return &VoucherBuilder{Params: voucher.Params{
		Code:          "SAVE10",
		Kind:          voucher.KindPercent,
		Value:         10,
		MaxDiscount:   &maxDiscount,
		MinOrderValue: 50_000,
		UsageLimit:    1,
		ValidFrom:     &from,
		ValidTo:       &to,
		Active:        true,
		Description:   "10% off",
		CreatedAt:     now,
		UpdatedAt:     now,
	}}
}

func (b *VoucherBuilder) With(mutate func(*voucher.Params)) *VoucherBuilder {
	mutate(&b.Params)
	return b
}

func (b *VoucherBuilder) Fixed(code string, amount int64) *VoucherBuilder {
	b.Params.Code = code
	b.Params.Kind = voucher.KindFixed
	b.Params.Value = amount
	b.Params.MaxDiscount = nil
	return b
}

func (b *VoucherBuilder) WithLimit(limit int64) *VoucherBuilder {
	b.Params.UsageLimit = limit
	return b
}

func (b *VoucherBuilder) BuildDomain() (*voucher.Voucher, error) {
	return voucher.New(b.Params)
}

func (b *VoucherBuilder) MustBuild() *voucher.Voucher {
	v, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return v
}
