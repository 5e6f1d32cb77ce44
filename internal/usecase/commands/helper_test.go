//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra/docstore"
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/receipt"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/usecase/shared"
	"cinebooking/tests/common/builder"
	sharedmock "cinebooking/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store      *docstore.Store
	clock      *clock.MockClock
	issuer     *receipt.Issuer
	publisher  *sharedmock.MockEventPublisher
	bookings   commands.BookingCommands
	settlement commands.SettlementCommands
	expiry     commands.ExpiryCommands
}

func newFixture(t *testing.T, providers ...shared.PaymentProvider) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		store:     docstore.NewMemoryStore(docstore.WithRetryBase(time.Millisecond), docstore.WithMaxRetries(20)),
		clock:     clock.NewMockClock(testNow),
		issuer:    receipt.NewIssuer("test-receipt-secret", "cinebooking"),
		publisher: sharedmock.NewMockEventPublisher(ctrl),
	}
	f.bookings = commands.NewBookingUseCase(f.store, f.clock, 10*time.Minute)
	f.settlement = commands.NewSettlementUseCase(f.store, f.clock, f.issuer, providers, f.publisher)
	f.expiry = commands.NewExpiryUseCase(f.store, f.clock, f.publisher, 100)
	return f
}

// ignoreEvents is for tests that do not assert on publishing.
func (f *fixture) ignoreEvents() {
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (f *fixture) putShowtime(t *testing.T, b *builder.ShowtimeBuilder) *showtime.Showtime {
	t.Helper()
	st := b.MustBuild()
	require.NoError(t, f.store.PutShowtime(context.Background(), st))
	return st
}

func (f *fixture) putVoucher(t *testing.T, b *builder.VoucherBuilder) *voucher.Voucher {
	t.Helper()
	v := b.MustBuild()
	require.NoError(t, f.store.PutVoucher(context.Background(), v))
	return v
}

func (f *fixture) book(t *testing.T, customer, showtimeID uuid.UUID, seats ...string) uuid.UUID {
	t.Helper()
	view, err := f.bookings.CreateBooking(context.Background(), commands.CreateBookingInput{
		CustomerID: customer,
		ShowtimeID: showtimeID,
		Seats:      seats,
	})
	require.NoError(t, err)
	return view.ID
}

func (f *fixture) seat(t *testing.T, showtimeID uuid.UUID, code string) showtime.Seat {
	t.Helper()
	st, err := f.store.Reads().ShowtimeByID(context.Background(), showtimeID)
	require.NoError(t, err)
	seat, ok := st.Seat(code)
	require.True(t, ok, "seat %s", code)
	return seat
}

func (f *fixture) booking(t *testing.T, id uuid.UUID) *booking.Booking {
	t.Helper()
	b, err := f.store.Reads().BookingByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) voucher(t *testing.T, code string) *voucher.Voucher {
	t.Helper()
	c, err := voucher.NewCode(code)
	require.NoError(t, err)
	v, err := f.store.Reads().VoucherByCode(context.Background(), c)
	require.NoError(t, err)
	return v
}

