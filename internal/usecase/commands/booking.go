package commands

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/commands/booking.go -package=commandsmock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra"
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/pkg/ptr"
	"cinebooking/internal/usecase/queries"
	"cinebooking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrShowtimeNotFound   = errs.New("showtime not found")
	ErrBookingNotFound    = queries.ErrBookingNotFound
	ErrNegativeOrderTotal = errs.New("order total cannot be negative")
	ErrMissingCustomerID  = errs.New("customer id is required")
)

type CreateBookingInput struct {
	CustomerID  uuid.UUID
	ShowtimeID  uuid.UUID
	Seats       []string
	VoucherCode *string
}

type VoucherPreview struct {
	Code           string
	OrderTotal     int64
	DiscountAmount int64
	FinalPrice     int64
	UsedCount      int64
	UsageLimit     int64
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*queries.BookingView, error)
	// PreviewVoucher prices an order with a voucher without consuming it.
	PreviewVoucher(ctx context.Context, code string, orderTotal int64) (*VoucherPreview, error)
}

type bookingUseCaseImpl struct {
	uow          shared.UnitOfWork
	clock        clock.Clock
	holdDuration time.Duration
}

func NewBookingUseCase(uow shared.UnitOfWork, clk clock.Clock, holdDuration time.Duration) BookingCommands {
	if holdDuration <= 0 {
		holdDuration = booking.DefaultHoldDuration
	}
	return &bookingUseCaseImpl{uow: uow, clock: clk, holdDuration: holdDuration}
}

// CreateBooking holds the seats, redeems the voucher and opens a PENDING booking
// in one transaction. A lost race on the seat map or the voucher counter reruns
// the whole transaction, so a retry sees the seats as taken and fails cleanly.
func (uc *bookingUseCaseImpl) CreateBooking(ctx context.Context, in CreateBookingInput) (*queries.BookingView, error) {
	if in.CustomerID == uuid.Nil {
		return nil, ErrMissingCustomerID
	}
	seats, err := booking.NormalizeSeatCodes(in.Seats)
	if err != nil {
		return nil, err
	}
	code, err := parseVoucherCode(in.VoucherCode)
	if err != nil {
		return nil, err
	}

	bookingID := uuid.New()
	var created *booking.Booking

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()

		st, err := tx.Showtimes().FindByID(ctx, in.ShowtimeID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrShowtimeNotFound
			}
			return err
		}

		original, err := st.Hold(seats, in.CustomerID, bookingID, now)
		if err != nil {
			return err
		}

		var discount int64
		var applied *string
		if code != nil {
			v, err := findVoucher(ctx, tx.Vouchers(), *code)
			if err != nil {
				return err
			}
			quote, err := v.Quote(now, original)
			if err != nil {
				return err
			}
			if err := v.Redeem(now); err != nil {
				return err
			}
			if err := tx.Vouchers().Save(ctx, v); err != nil {
				return err
			}
			discount = quote.Discount
			applied = ptr.Of(code.String())
		}

		pricing, err := booking.NewPricing(original, discount)
		if err != nil {
			return err
		}
		b, err := booking.New(booking.NewParams{
			ID:            bookingID,
			CustomerID:    in.CustomerID,
			ShowtimeID:    st.ID(),
			ShowtimeStart: st.StartsAt(),
			Seats:         seats,
			Pricing:       pricing,
			VoucherCode:   applied,
			Now:           now,
			HoldDuration:  uc.holdDuration,
		})
		if err != nil {
			return err
		}

		if err := tx.Showtimes().Save(ctx, st); err != nil {
			return err
		}
		if err := tx.Bookings().Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking created",
		"booking_id", created.ID().String(),
		"customer_id", created.CustomerID().String(),
		"showtime_id", created.ShowtimeID().String(),
		"seats", created.Seats(),
		"final_price", created.FinalPrice(),
		"expires_at", created.ExpiresAt())

	return queries.NewBookingView(created), nil
}

func (uc *bookingUseCaseImpl) PreviewVoucher(ctx context.Context, raw string, orderTotal int64) (*VoucherPreview, error) {
	if orderTotal < 0 {
		return nil, ErrNegativeOrderTotal
	}
	code, err := parseVoucherCode(&raw)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, errs.Mark(voucher.ErrNotFound, voucher.ErrInvalid)
	}

	v, err := uc.uow.Reads().VoucherByCode(ctx, *code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(voucher.ErrNotFound, voucher.ErrInvalid)
		}
		return nil, err
	}
	quote, err := v.Quote(uc.clock.Now(), orderTotal)
	if err != nil {
		return nil, err
	}
	return &VoucherPreview{
		Code:           quote.Code.String(),
		OrderTotal:     quote.OrderTotal,
		DiscountAmount: quote.Discount,
		FinalPrice:     quote.Final,
		UsedCount:      quote.UsedCount,
		UsageLimit:     v.UsageLimit(),
	}, nil
}

// parseVoucherCode treats a blank code as no voucher. A code that cannot exist is reported as not found.
func parseVoucherCode(raw *string) (*voucher.Code, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	code, err := voucher.NewCode(*raw)
	if err != nil {
		return nil, errs.Mark(voucher.ErrNotFound, voucher.ErrInvalid)
	}
	return &code, nil
}

func findVoucher(ctx context.Context, repo shared.VoucherRepository, code voucher.Code) (*voucher.Voucher, error) {
	v, err := repo.FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(voucher.ErrNotFound, voucher.ErrInvalid)
		}
		return nil, err
	}
	return v, nil
}
