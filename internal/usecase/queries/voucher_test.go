//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra/docstore"
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/usecase/queries"
	"cinebooking/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherQueries_ListActive(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	clk := clock.NewMockClock(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	q := queries.NewVoucherQueries(store, clk)

	require.NoError(t, store.PutVoucher(ctx, builder.NewVoucherBuilder().MustBuild()))
	require.NoError(t, store.PutVoucher(ctx, builder.NewVoucherBuilder().Fixed("FLAT50K", 50_000).With(func(p *voucher.Params) {
		to := clk.Now().Add(7 * 24 * time.Hour)
		p.ValidTo = &to
	}).MustBuild()))
	require.NoError(t, store.PutVoucher(ctx, builder.NewVoucherBuilder().Fixed("PAUSED", 10_000).With(func(p *voucher.Params) {
		p.Active = false
	}).MustBuild()))

	got, err := q.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "FLAT50K", got[0].Code)
	assert.Equal(t, "FIXED", got[0].DiscountType)
	assert.Equal(t, int64(50_000), got[0].DiscountValue)
	assert.Nil(t, got[0].MaxDiscount)

	assert.Equal(t, "SAVE10", got[1].Code)
	assert.Equal(t, "PERCENT", got[1].DiscountType)
	assert.Equal(t, int64(10), got[1].DiscountValue)
	require.NotNil(t, got[1].MaxDiscount)
	assert.Equal(t, int64(20_000), *got[1].MaxDiscount)
	assert.Equal(t, int64(50_000), got[1].MinOrderValue)

	// FLAT50K ends after a week, SAVE10 after a month
	clk.Add(8 * 24 * time.Hour)
	got, err = q.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SAVE10", got[0].Code)
}
