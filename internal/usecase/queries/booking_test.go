//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/loyalty"
	"cinebooking/internal/infra/docstore"
	"cinebooking/internal/usecase/queries"
	"cinebooking/internal/usecase/shared"
	"cinebooking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBooking(t *testing.T, store *docstore.Store, b *booking.Booking) {
	t.Helper()
	err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Bookings().Create(ctx, b)
	})
	require.NoError(t, err)
}

func TestBookingQueries_GetByID(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	q := queries.NewBookingQueries(store)

	bb := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		code := "SAVE10"
		b.VoucherCode = &code
		b.Discount = 20_000
	})
	seedBooking(t, store, bb.MustBuild())

	t.Run("owner sees the booking", func(t *testing.T) {
		view, err := q.GetByID(ctx, bb.CustomerID, bb.ID)
		require.NoError(t, err)
		want := bb.BuildView()
		assert.Equal(t, want.ID, view.ID)
		assert.Equal(t, want.Seats, view.Seats)
		assert.Equal(t, want.OriginalPrice, view.OriginalPrice)
		assert.Equal(t, int64(180_000), view.FinalPrice)
		assert.Equal(t, want.VoucherCode, view.VoucherCode)
		assert.Equal(t, "PENDING", view.Status)
		assert.True(t, want.ExpiresAt.Equal(view.ExpiresAt))
	})

	t.Run("other customers do not", func(t *testing.T) {
		_, err := q.GetByID(ctx, uuid.New(), bb.ID)
		assert.ErrorIs(t, err, queries.ErrBookingAccess)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := q.GetByID(ctx, bb.CustomerID, uuid.New())
		assert.ErrorIs(t, err, queries.ErrBookingNotFound)
	})
}

func TestBookingQueries_ListByCustomer(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	q := queries.NewBookingQueries(store)
	customer := uuid.New()

	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		i := i
		b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.CustomerID = customer
			b.Now = base.Add(time.Duration(i) * time.Minute)
		}).MustBuild()
		seedBooking(t, store, b)
		ids = append(ids, b.ID())
	}
	seedBooking(t, store, builder.NewBookingBuilder().MustBuild())

	views, err := q.ListByCustomer(ctx, customer, 0)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, ids[2], views[0].ID)
	assert.Equal(t, ids[0], views[2].ID)

	views, err = q.ListByCustomer(ctx, customer, 2)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	views, err = q.ListByCustomer(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestLoyaltyQueries_GetAccount(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	q := queries.NewLoyaltyQueries(store)
	customer := uuid.New()

	view, err := q.GetAccount(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, customer, view.CustomerID)
	assert.Equal(t, int64(0), view.Points)
	assert.Equal(t, loyalty.RankStandard.String(), view.Rank)

	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	err = store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		acc, err := tx.Customers().LoyaltyAccount(ctx, customer)
		if err != nil {
			return err
		}
		if _, err := acc.Accrue(5_200_000, at); err != nil {
			return err
		}
		return tx.Customers().SaveLoyaltyAccount(ctx, acc)
	})
	require.NoError(t, err)

	view, err = q.GetAccount(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(5_200_000), view.TotalSpending)
	assert.Equal(t, int64(260_000), view.Points)
	assert.Equal(t, "GOLD", view.Rank)
	assert.True(t, at.Equal(view.UpdatedAt))
}
