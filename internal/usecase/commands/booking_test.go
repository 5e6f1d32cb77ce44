//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/pkg/ptr"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/usecase/shared"
	"cinebooking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking_HoldsSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.putShowtime(t, builder.NewShowtimeBuilder().WithSingleSeat("A1", 100_000))
	customer1, customer2 := uuid.New(), uuid.New()

	view, err := f.bookings.CreateBooking(ctx, commands.CreateBookingInput{
		CustomerID: customer1,
		ShowtimeID: st.ID(),
		Seats:      []string{"a1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", view.Status)
	assert.Equal(t, []string{"A1"}, view.Seats)
	assert.Equal(t, int64(100_000), view.OriginalPrice)
	assert.Equal(t, int64(0), view.DiscountAmount)
	assert.Equal(t, int64(100_000), view.FinalPrice)
	assert.Equal(t, int64(100_000), view.SeatPrice)
	assert.Nil(t, view.VoucherCode)
	assert.True(t, testNow.Add(10*time.Minute).Equal(view.ExpiresAt))
	assert.True(t, st.StartsAt().Equal(view.ShowtimeStart))

	seat := f.seat(t, st.ID(), "A1")
	assert.Equal(t, showtime.SeatHeld, seat.Status)
	require.NotNil(t, seat.HolderID)
	assert.Equal(t, customer1, *seat.HolderID)
	require.NotNil(t, seat.BookingID)
	assert.Equal(t, view.ID, *seat.BookingID)

	_, err = f.bookings.CreateBooking(ctx, commands.CreateBookingInput{
		CustomerID: customer2,
		ShowtimeID: st.ID(),
		Seats:      []string{"A1"},
	})
	assert.ErrorIs(t, err, showtime.ErrSeatUnavailable)
}

func TestCreateBooking_Save10(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.putShowtime(t, builder.NewShowtimeBuilder())
	f.putVoucher(t, builder.NewVoucherBuilder())

	view, err := f.bookings.CreateBooking(ctx, commands.CreateBookingInput{
		CustomerID:  uuid.New(),
		ShowtimeID:  st.ID(),
		Seats:       []string{"A1", "A2", "A3"},
		VoucherCode: ptr.Of(" save10 "),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(300_000), view.OriginalPrice)
	assert.Equal(t, int64(20_000), view.DiscountAmount)
	assert.Equal(t, int64(280_000), view.FinalPrice)
	assert.Equal(t, view.OriginalPrice-view.DiscountAmount, view.FinalPrice)
	require.NotNil(t, view.VoucherCode)
	assert.Equal(t, "SAVE10", *view.VoucherCode)
	assert.Equal(t, int64(1), f.voucher(t, "SAVE10").UsedCount())

	_, err = f.bookings.CreateBooking(ctx, commands.CreateBookingInput{
		CustomerID:  uuid.New(),
		ShowtimeID:  st.ID(),
		Seats:       []string{"B1", "B2", "B3"},
		VoucherCode: ptr.Of("SAVE10"),
	})
	assert.ErrorIs(t, err, voucher.ErrLimitReached)
	assert.True(t, errs.Is(err, voucher.ErrInvalid))

	// nothing from the failed attempt is visible
	assert.Equal(t, int64(1), f.voucher(t, "SAVE10").UsedCount())
	for _, code := range []string{"B1", "B2", "B3"} {
		assert.True(t, f.seat(t, st.ID(), code).IsAvailable())
	}
}

func TestCreateBooking_Failures(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		input   func(showtimeID uuid.UUID) commands.CreateBookingInput
		wantErr error
	}{
		{
			name: "showtime not found",
			input: func(uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{CustomerID: uuid.New(), ShowtimeID: uuid.New(), Seats: []string{"A1"}}
			},
			wantErr: commands.ErrShowtimeNotFound,
		},
		{
			name: "seat not on the map",
			input: func(id uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{CustomerID: uuid.New(), ShowtimeID: id, Seats: []string{"A1", "Z9"}}
			},
			wantErr: showtime.ErrInvalidSeat,
		},
		{
			name: "no seats",
			input: func(id uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{CustomerID: uuid.New(), ShowtimeID: id}
			},
			wantErr: booking.ErrNoSeats,
		},
		{
			name: "duplicate seats",
			input: func(id uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{CustomerID: uuid.New(), ShowtimeID: id, Seats: []string{"A1", "a1"}}
			},
			wantErr: booking.ErrDuplicateSeat,
		},
		{
			name: "unknown voucher",
			input: func(id uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{CustomerID: uuid.New(), ShowtimeID: id, Seats: []string{"A1"}, VoucherCode: ptr.Of("NOPE10")}
			},
			wantErr: voucher.ErrNotFound,
		},
		{
			name: "malformed voucher code",
			input: func(id uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{CustomerID: uuid.New(), ShowtimeID: id, Seats: []string{"A1"}, VoucherCode: ptr.Of("x!")}
			},
			wantErr: voucher.ErrNotFound,
		},
		{
			name: "order below voucher minimum",
			input: func(id uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{CustomerID: uuid.New(), ShowtimeID: id, Seats: []string{"C1"}, VoucherCode: ptr.Of("SAVE10")}
			},
			wantErr: voucher.ErrBelowMinimum,
		},
		{
			name: "missing customer",
			input: func(id uuid.UUID) commands.CreateBookingInput {
				return commands.CreateBookingInput{ShowtimeID: id, Seats: []string{"A1"}}
			},
			wantErr: commands.ErrMissingCustomerID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			st := f.putShowtime(t, builder.NewShowtimeBuilder().WithSeats(
				showtime.Seat{Code: "A1", Row: "A", Column: 1, Class: showtime.ClassStandard, Price: 100_000},
				showtime.Seat{Code: "C1", Row: "C", Column: 1, Class: showtime.ClassStandard, Price: 40_000},
			))
			f.putVoucher(t, builder.NewVoucherBuilder())

			_, err := f.bookings.CreateBooking(ctx, tc.input(st.ID()))
			require.Error(t, err)
			assert.True(t, errs.Is(err, tc.wantErr), "got %v", err)

			assert.True(t, f.seat(t, st.ID(), "A1").IsAvailable())
			assert.True(t, f.seat(t, st.ID(), "C1").IsAvailable())
			assert.Equal(t, int64(0), f.voucher(t, "SAVE10").UsedCount())
		})
	}
}

func TestCreateBooking_ConcurrentSameSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.putShowtime(t, builder.NewShowtimeBuilder().WithSingleSeat("A1", 100_000))

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []uuid.UUID
		failures  []error
	)
	for n := 0; n < callers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := f.bookings.CreateBooking(ctx, commands.CreateBookingInput{
				CustomerID: uuid.New(),
				ShowtimeID: st.ID(),
				Seats:      []string{"A1"},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes = append(successes, view.ID)
		}()
	}
	wg.Wait()

	require.Len(t, successes, 1)
	for _, err := range failures {
		assert.True(t, errs.IsAny(err, showtime.ErrSeatUnavailable, shared.ErrConflict), "unexpected error %v", err)
	}

	seat := f.seat(t, st.ID(), "A1")
	require.NotNil(t, seat.BookingID)
	assert.Equal(t, successes[0], *seat.BookingID)
}

func TestCreateBooking_ConcurrentVoucherNeverOverRedeemed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.putShowtime(t, builder.NewShowtimeBuilder())
	f.putVoucher(t, builder.NewVoucherBuilder().WithLimit(3))

	seats := st.SeatCodes()
	const callers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(seat string) {
			defer wg.Done()
			_, err := f.bookings.CreateBooking(ctx, commands.CreateBookingInput{
				CustomerID:  uuid.New(),
				ShowtimeID:  st.ID(),
				Seats:       []string{seat},
				VoucherCode: ptr.Of("SAVE10"),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			assert.True(t, errs.IsAny(err, voucher.ErrLimitReached, shared.ErrConflict), "unexpected error %v", err)
		}(seats[i])
	}
	wg.Wait()

	used := f.voucher(t, "SAVE10").UsedCount()
	assert.LessOrEqual(t, used, int64(3))
	assert.Equal(t, int64(successes), used)
	assert.GreaterOrEqual(t, successes, 1)
}

func TestPreviewVoucher(t *testing.T) {
	ctx := context.Background()

	t.Run("computes without redeeming", func(t *testing.T) {
		f := newFixture(t)
		f.putVoucher(t, builder.NewVoucherBuilder())

		preview, err := f.bookings.PreviewVoucher(ctx, "save10", 300_000)
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", preview.Code)
		assert.Equal(t, int64(20_000), preview.DiscountAmount)
		assert.Equal(t, int64(280_000), preview.FinalPrice)
		assert.Equal(t, int64(0), preview.UsedCount)
		assert.Equal(t, int64(1), preview.UsageLimit)
		assert.Equal(t, int64(0), f.voucher(t, "SAVE10").UsedCount())
	})

	t.Run("percentage below cap", func(t *testing.T) {
		f := newFixture(t)
		f.putVoucher(t, builder.NewVoucherBuilder())

		preview, err := f.bookings.PreviewVoucher(ctx, "SAVE10", 123_456)
		require.NoError(t, err)
		assert.Equal(t, int64(12_345), preview.DiscountAmount)
		assert.Equal(t, int64(111_111), preview.FinalPrice)
	})

	t.Run("fixed discount clamped to order", func(t *testing.T) {
		f := newFixture(t)
		f.putVoucher(t, builder.NewVoucherBuilder().Fixed("FLAT500K", 500_000).With(func(p *voucher.Params) {
			p.MinOrderValue = 0
		}))

		preview, err := f.bookings.PreviewVoucher(ctx, "FLAT500K", 300_000)
		require.NoError(t, err)
		assert.Equal(t, int64(300_000), preview.DiscountAmount)
		assert.Equal(t, int64(0), preview.FinalPrice)
	})

	t.Run("inactive is reported before expired", func(t *testing.T) {
		f := newFixture(t)
		f.putVoucher(t, builder.NewVoucherBuilder().With(func(p *voucher.Params) {
			p.Active = false
			past := testNow.Add(-time.Hour)
			p.ValidTo = &past
		}))

		_, err := f.bookings.PreviewVoucher(ctx, "SAVE10", 300_000)
		assert.ErrorIs(t, err, voucher.ErrInactive)
		assert.Equal(t, "INACTIVE", voucher.Reason(err))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bookings.PreviewVoucher(ctx, "GHOST", 300_000)
		assert.True(t, errs.Is(err, voucher.ErrNotFound))
		assert.True(t, errs.Is(err, voucher.ErrInvalid))
	})

	t.Run("negative total", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bookings.PreviewVoucher(ctx, "SAVE10", -1)
		assert.ErrorIs(t, err, commands.ErrNegativeOrderTotal)
	})
}
