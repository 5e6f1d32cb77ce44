package commands

//go:generate mockgen -source=settlement.go -destination=../../../tests/mock/commands/settlement.go -package=commandsmock

import (
	"context"
	"log/slog"
	"strings"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/loyalty"
	"cinebooking/internal/infra"
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/pkg/ptr"
	"cinebooking/internal/pkg/receipt"
	"cinebooking/internal/usecase/queries"
	"cinebooking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOwnerMismatch     = queries.ErrBookingAccess
	ErrAlreadyCancelled  = errs.New("booking already cancelled")
	ErrHoldExpired       = errs.New("booking hold has expired")
	ErrUnsupportedMethod = errs.New("unsupported payment method")
	ErrAmountMismatch    = errs.New("paid amount does not match booking total")
	errReceiptIssue      = errs.New("failed to issue receipt")
)

type SettlementResult struct {
	Booking *queries.BookingView
	Receipt string
	// AlreadyPaid is set when the booking had been settled before this call.
	AlreadyPaid  bool
	PointsEarned int64
	Rank         loyalty.Rank
	Promoted     bool
}

type PaymentResult struct {
	Booking     *queries.BookingView
	Method      string
	Settled     bool
	Receipt     string
	RedirectURL string
	Deeplink    string
}

type SettlementCommands interface {
	FinalizeBooking(ctx context.Context, bookingID, customerID uuid.UUID, method string) (*SettlementResult, error)
	ProcessPayment(ctx context.Context, customerID, bookingID uuid.UUID, method string) (*PaymentResult, error)
	// HandleCallback processes a provider notification. The returned error is for
	// reconciliation logs only; the provider is acknowledged either way.
	HandleCallback(ctx context.Context, provider string, body []byte) error
}

type settlementUseCaseImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	issuer    *receipt.Issuer
	providers map[string]shared.PaymentProvider
	publisher shared.EventPublisher
}

func NewSettlementUseCase(
	uow shared.UnitOfWork,
	clk clock.Clock,
	issuer *receipt.Issuer,
	providers []shared.PaymentProvider,
	publisher shared.EventPublisher,
) SettlementCommands {
	byName := make(map[string]shared.PaymentProvider, len(providers))
	for _, p := range providers {
		byName[normalizeMethod(p.Name())] = p
	}
	return &settlementUseCaseImpl{
		uow:       uow,
		clock:     clk,
		issuer:    issuer,
		providers: byName,
		publisher: publisher,
	}
}

func normalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// FinalizeBooking settles a PENDING booking: loyalty accrual, receipt, PAID status
// and HELD to SOLD seats commit together or not at all. Settling a PAID booking
// again returns the stored receipt and changes nothing.
func (uc *settlementUseCaseImpl) FinalizeBooking(ctx context.Context, bookingID, customerID uuid.UUID, method string) (*SettlementResult, error) {
	method = normalizeMethod(method)
	if method == "" {
		return nil, ErrUnsupportedMethod
	}

	var result *SettlementResult
	var settled *booking.Booking

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result, settled = nil, nil
		now := uc.clock.Now()

		b, err := tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if b.IsPaid() {
			result = &SettlementResult{
				Booking:     queries.NewBookingView(b),
				Receipt:     ptr.Deref(b.Receipt()),
				AlreadyPaid: true,
			}
			return nil
		}
		if !b.OwnedBy(customerID) {
			return ErrOwnerMismatch
		}
		if b.IsCancelled() {
			return ErrAlreadyCancelled
		}
		if b.IsExpired(now) {
			return ErrHoldExpired
		}

		acc, err := tx.Customers().LoyaltyAccount(ctx, b.CustomerID())
		if err != nil {
			return err
		}
		accrual, err := acc.Accrue(b.FinalPrice(), now)
		if err != nil {
			return err
		}
		if err := tx.Customers().SaveLoyaltyAccount(ctx, acc); err != nil {
			return err
		}

		proof, err := uc.issuer.Issue(receipt.Payload{
			BookingID:     b.ID(),
			CustomerID:    b.CustomerID(),
			Seats:         b.Seats(),
			ShowtimeStart: b.ShowtimeStart(),
			PaidAt:        now,
		})
		if err != nil {
			return errs.Mark(err, errReceiptIssue)
		}
		if err := b.MarkPaid(method, now, proof); err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, b); err != nil {
			return err
		}

		st, err := tx.Showtimes().FindByID(ctx, b.ShowtimeID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrShowtimeNotFound
			}
			return err
		}
		if err := st.Sell(b.Seats(), b.ID(), now); err != nil {
			return err
		}
		if err := tx.Showtimes().Save(ctx, st); err != nil {
			return err
		}

		settled = b
		result = &SettlementResult{
			Booking:      queries.NewBookingView(b),
			Receipt:      proof,
			PointsEarned: accrual.Points,
			Rank:         accrual.Rank,
			Promoted:     accrual.Promoted(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled != nil {
		slog.Info("booking settled",
			"booking_id", settled.ID().String(),
			"customer_id", settled.CustomerID().String(),
			"method", method,
			"final_price", settled.FinalPrice(),
			"points_earned", result.PointsEarned,
			"rank", result.Rank.String())
		if result.Promoted {
			slog.Info("customer promoted", "customer_id", settled.CustomerID().String(), "rank", result.Rank.String())
		}
		uc.publish(ctx, shared.EventBookingConfirmed, settled)
	}
	return result, nil
}

// ProcessPayment starts payment for the caller's booking. Providers that settle
// synchronously finalize right away; the others hand back where to send the customer.
func (uc *settlementUseCaseImpl) ProcessPayment(ctx context.Context, customerID, bookingID uuid.UUID, method string) (*PaymentResult, error) {
	provider, ok := uc.providers[normalizeMethod(method)]
	if !ok {
		return nil, errs.Wrapf(ErrUnsupportedMethod, "%q", method)
	}

	b, err := uc.uow.Reads().BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !b.OwnedBy(customerID) {
		return nil, ErrOwnerMismatch
	}
	switch {
	case b.IsPaid():
		return &PaymentResult{
			Booking: queries.NewBookingView(b),
			Method:  ptr.Deref(b.PaymentMethod()),
			Settled: true,
			Receipt: ptr.Deref(b.Receipt()),
		}, nil
	case b.IsCancelled():
		return nil, ErrAlreadyCancelled
	case b.IsExpired(uc.clock.Now()):
		return nil, ErrHoldExpired
	}

	initiation, err := provider.Initiate(ctx, shared.PaymentRequest{BookingID: b.ID(), Amount: b.FinalPrice()})
	if err != nil {
		return nil, errs.Mark(err, shared.ErrProvider)
	}

	if !initiation.Settled {
		slog.Info("payment initiated",
			"booking_id", b.ID().String(),
			"provider", provider.Name(),
			"amount", b.FinalPrice())
		return &PaymentResult{
			Booking:     queries.NewBookingView(b),
			Method:      provider.Name(),
			RedirectURL: initiation.RedirectURL,
			Deeplink:    initiation.Deeplink,
		}, nil
	}

	settled, err := uc.FinalizeBooking(ctx, b.ID(), customerID, provider.Name())
	if err != nil {
		return nil, err
	}
	return &PaymentResult{
		Booking: settled.Booking,
		Method:  provider.Name(),
		Settled: true,
		Receipt: settled.Receipt,
	}, nil
}

func (uc *settlementUseCaseImpl) HandleCallback(ctx context.Context, providerName string, body []byte) error {
	provider, ok := uc.providers[normalizeMethod(providerName)]
	if !ok {
		slog.Warn("payment callback from unknown provider", "provider", providerName)
		return errs.Wrapf(ErrUnsupportedMethod, "%q", providerName)
	}

	cb, err := provider.VerifyCallback(ctx, body)
	if err != nil {
		slog.Error("payment callback rejected", "provider", provider.Name(), "error", err.Error())
		return errs.Mark(err, shared.ErrProvider)
	}
	if !cb.Success {
		slog.Info("payment not completed",
			"provider", provider.Name(),
			"booking_id", cb.BookingID.String(),
			"message", cb.Message)
		return nil
	}

	b, err := uc.uow.Reads().BookingByID(ctx, cb.BookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			err = ErrBookingNotFound
		}
		slog.Error("payment callback for unknown booking",
			"provider", provider.Name(),
			"booking_id", cb.BookingID.String(),
			"error", err.Error())
		return err
	}
	if cb.Amount != b.FinalPrice() {
		slog.Error("payment amount mismatch, needs reconciliation",
			"provider", provider.Name(),
			"booking_id", b.ID().String(),
			"paid", cb.Amount,
			"expected", b.FinalPrice(),
			"transaction_id", cb.TransactionID)
		return ErrAmountMismatch
	}

	if _, err := uc.FinalizeBooking(ctx, b.ID(), b.CustomerID(), provider.Name()); err != nil {
		slog.Error("settlement after payment failed, needs reconciliation",
			"provider", provider.Name(),
			"booking_id", b.ID().String(),
			"transaction_id", cb.TransactionID,
			"error", err.Error())
		return err
	}
	return nil
}

func (uc *settlementUseCaseImpl) publish(ctx context.Context, typ shared.EventType, b *booking.Booking) {
	publishBookingEvent(ctx, uc.publisher, typ, b, uc.clock.Now())
}

