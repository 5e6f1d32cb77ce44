//go:build unit

package docstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/loyalty"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra"
	"cinebooking/internal/infra/docstore"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"
	"cinebooking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(opts ...docstore.Option) *docstore.Store {
	opts = append([]docstore.Option{docstore.WithRetryBase(time.Millisecond)}, opts...)
	return docstore.NewMemoryStore(opts...)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	st := builder.NewShowtimeBuilder().MustBuild()
	require.NoError(t, store.PutShowtime(ctx, st))

	bk := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.ShowtimeID = st.ID()
		code := "SAVE10"
		b.VoucherCode = &code
		b.Discount = 20_000
	}).MustBuild()

	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		loaded, err := tx.Showtimes().FindByID(ctx, st.ID())
		if err != nil {
			return err
		}
		if _, err := loaded.Hold(bk.Seats(), bk.CustomerID(), bk.ID(), bk.CreatedAt()); err != nil {
			return err
		}
		if err := tx.Showtimes().Save(ctx, loaded); err != nil {
			return err
		}
		return tx.Bookings().Create(ctx, bk)
	})
	require.NoError(t, err)

	got, err := store.Reads().BookingByID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bk.CustomerID(), got.CustomerID())
	assert.Equal(t, bk.Seats(), got.Seats())
	assert.Equal(t, int64(180_000), got.FinalPrice())
	assert.Equal(t, "SAVE10", *got.VoucherCode())
	assert.Equal(t, booking.StatusPending, got.Status())
	assert.True(t, bk.ExpiresAt().Equal(got.ExpiresAt()))
	assert.True(t, bk.CreatedAt().Equal(got.CreatedAt()))

	loaded, err := store.Reads().ShowtimeByID(ctx, st.ID())
	require.NoError(t, err)
	seat, ok := loaded.Seat("A1")
	require.True(t, ok)
	assert.Equal(t, "HELD", seat.Status.String())
	require.NotNil(t, seat.BookingID)
	assert.Equal(t, bk.ID(), *seat.BookingID)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	_, err := store.Reads().BookingByID(ctx, uuid.New())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))

	err = store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Showtimes().FindByID(ctx, uuid.New())
		return err
	})
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	assert.False(t, errs.Is(err, shared.ErrConflict))
}

func TestStore_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	bk := builder.NewBookingBuilder().MustBuild()

	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().Create(ctx, bk); err != nil {
			return err
		}
		got, err := tx.Bookings().FindByID(ctx, bk.ID())
		if err != nil {
			return err
		}
		assert.Equal(t, bk.ID(), got.ID())
		return nil
	})
	require.NoError(t, err)
}

func TestStore_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	bk := builder.NewBookingBuilder().MustBuild()
	boom := errors.New("boom")

	attempts := 0
	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		attempts++
		if err := tx.Bookings().Create(ctx, bk); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)

	_, err = store.Reads().BookingByID(ctx, bk.ID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestStore_RetriesLostRace(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	st := builder.NewShowtimeBuilder().MustBuild()
	require.NoError(t, store.PutShowtime(ctx, st))

	read := make(chan struct{})
	written := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	attempts := 0
	go func() {
		defer wg.Done()
		err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			attempts++
			loaded, err := tx.Showtimes().FindByID(ctx, st.ID())
			if err != nil {
				return err
			}
			if attempts == 1 {
				close(read)
				<-written
			}
			if _, err := loaded.Hold([]string{"B1"}, uuid.New(), uuid.New(), time.Now()); err != nil {
				return err
			}
			return tx.Showtimes().Save(ctx, loaded)
		})
		assert.NoError(t, err)
	}()

	<-read
	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		loaded, err := tx.Showtimes().FindByID(ctx, st.ID())
		if err != nil {
			return err
		}
		if _, err := loaded.Hold([]string{"A1"}, uuid.New(), uuid.New(), time.Now()); err != nil {
			return err
		}
		return tx.Showtimes().Save(ctx, loaded)
	})
	require.NoError(t, err)
	close(written)
	wg.Wait()

	assert.Equal(t, 2, attempts)
	loaded, err := store.Reads().ShowtimeByID(ctx, st.ID())
	require.NoError(t, err)
	a1, _ := loaded.Seat("A1")
	b1, _ := loaded.Seat("B1")
	assert.False(t, a1.IsAvailable())
	assert.False(t, b1.IsAvailable())
}

func TestStore_ConflictAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	store := newStore(docstore.WithMaxRetries(2))
	st := builder.NewShowtimeBuilder().MustBuild()
	require.NoError(t, store.PutShowtime(ctx, st))

	attempts := 0
	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		attempts++
		loaded, err := tx.Showtimes().FindByID(ctx, st.ID())
		if err != nil {
			return err
		}
		// another writer bumps the document every time
		if err := store.PutShowtime(ctx, st); err != nil {
			return err
		}
		return tx.Showtimes().Save(ctx, loaded)
	})

	require.Error(t, err)
	assert.True(t, errs.Is(err, shared.ErrConflict))
	assert.Equal(t, 3, attempts)
}

func TestStore_DuplicateCreateConflicts(t *testing.T) {
	ctx := context.Background()
	store := newStore(docstore.WithMaxRetries(1))
	bk := builder.NewBookingBuilder().MustBuild()

	create := func(ctx context.Context, tx shared.Tx) error { return tx.Bookings().Create(ctx, bk) }
	require.NoError(t, store.Within(ctx, create))

	err := store.Within(ctx, create)
	assert.True(t, errs.Is(err, shared.ErrConflict))
}

func TestStore_ExpiredPendingBookings(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	mk := func(offset time.Duration) *booking.Booking {
		return builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.Now = base.Add(offset)
		}).MustBuild()
	}
	oldest, older, fresh := mk(0), mk(time.Minute), mk(20*time.Minute)
	paid := mk(-time.Minute)
	require.NoError(t, paid.MarkPaid("SIMULATOR", base, "receipt"))

	for _, b := range []*booking.Booking{fresh, paid, older, oldest} {
		bk := b
		require.NoError(t, store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Bookings().Create(ctx, bk)
		}))
	}

	now := base.Add(15 * time.Minute)
	got, err := store.Reads().ExpiredPendingBookings(ctx, now, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, oldest.ID(), got[0].ID())
	assert.Equal(t, older.ID(), got[1].ID())

	got, err = store.Reads().ExpiredPendingBookings(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, oldest.ID(), got[0].ID())

	// deadline exactly now is not yet expired
	got, err = store.Reads().ExpiredPendingBookings(ctx, oldest.ExpiresAt(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_BookingsByCustomer(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	customer := uuid.New()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		bk := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.CustomerID = customer
			b.Now = base.Add(time.Duration(i) * time.Minute)
		}).MustBuild()
		ids = append(ids, bk.ID())
		require.NoError(t, store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Bookings().Create(ctx, bk)
		}))
	}
	other := builder.NewBookingBuilder().MustBuild()
	require.NoError(t, store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Bookings().Create(ctx, other)
	}))

	got, err := store.Reads().BookingsByCustomer(ctx, customer, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID())
	assert.Equal(t, ids[1], got[1].ID())
}

func TestStore_LoyaltyAccount(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	customer := uuid.New()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	acc, err := store.Reads().LoyaltyAccount(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), acc.Points())
	assert.Equal(t, loyalty.RankStandard, acc.Rank())

	require.NoError(t, store.PutCustomer(ctx, customer, map[string]any{"fullName": "Nguyen Van A"}))

	err = store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		acc, err := tx.Customers().LoyaltyAccount(ctx, customer)
		if err != nil {
			return err
		}
		if _, err := acc.Accrue(1_200_000, now); err != nil {
			return err
		}
		return tx.Customers().SaveLoyaltyAccount(ctx, acc)
	})
	require.NoError(t, err)

	acc, err = store.Reads().LoyaltyAccount(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(1_200_000), acc.Spending())
	assert.Equal(t, int64(60_000), acc.Points())
	assert.Equal(t, loyalty.RankSilver, acc.Rank())
}

func TestStore_DeleteShowtime(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	st := builder.NewShowtimeBuilder().MustBuild()
	require.NoError(t, store.PutShowtime(ctx, st))
	require.NoError(t, store.DeleteShowtime(ctx, st.ID()))

	_, err := store.Reads().ShowtimeByID(ctx, st.ID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestStore_RecreatedDocumentInvalidatesOldRead(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	st := builder.NewShowtimeBuilder().MustBuild()
	require.NoError(t, store.PutShowtime(ctx, st))

	attempts := 0
	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		attempts++
		loaded, err := tx.Showtimes().FindByID(ctx, st.ID())
		if err != nil {
			return err
		}
		if attempts == 1 {
			// the showtime is dropped and put back while this transaction holds the old copy
			if err := store.DeleteShowtime(ctx, st.ID()); err != nil {
				return err
			}
			if err := store.PutShowtime(ctx, st); err != nil {
				return err
			}
		}
		if _, err := loaded.Hold([]string{"A1"}, uuid.New(), uuid.New(), time.Now()); err != nil {
			return err
		}
		return tx.Showtimes().Save(ctx, loaded)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestStore_ActiveVouchers(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	vouchers := []*builder.VoucherBuilder{
		builder.NewVoucherBuilder(),
		builder.NewVoucherBuilder().Fixed("FLAT50K", 50_000),
		builder.NewVoucherBuilder().Fixed("PAUSED", 10_000).With(func(p *voucher.Params) { p.Active = false }),
		builder.NewVoucherBuilder().Fixed("SUMMER", 10_000).With(func(p *voucher.Params) {
			from := now.Add(-90 * 24 * time.Hour)
			to := now.Add(-time.Hour)
			p.ValidFrom, p.ValidTo = &from, &to
		}),
	}
	for _, b := range vouchers {
		require.NoError(t, store.PutVoucher(ctx, b.MustBuild()))
	}

	got, err := store.Reads().ActiveVouchers(ctx, now)
	require.NoError(t, err)
	codes := make([]string, len(got))
	for i, v := range got {
		codes[i] = v.Code().String()
	}
	assert.Equal(t, []string{"FLAT50K", "SAVE10"}, codes)

	none, err := store.Reads().ActiveVouchers(ctx, now.Add(60*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}
