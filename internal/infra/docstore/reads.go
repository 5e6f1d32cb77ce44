package docstore

import (
	"context"
	"log/slog"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/loyalty"
	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra"

	"github.com/google/uuid"
)

// reads serves non-transactional lookups straight from the backend.
type reads struct {
	b backend
}

func (r *reads) load(ctx context.Context, coll Collection, id, what string) (document, error) {
	d, ok, err := r.b.get(ctx, coll, id)
	if err != nil {
		return document{}, infra.WrapRepoErr(infra.KindDBFailure, "failed to load "+what, err)
	}
	if !ok {
		return document{}, infra.NewRepoErr(infra.KindNotFound, what+" not found")
	}
	return d, nil
}

func (r *reads) BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	d, err := r.load(ctx, Bookings, id.String(), "booking")
	if err != nil {
		return nil, err
	}
	b, err := decodeBooking(d.body)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode booking", err)
	}
	return b, nil
}

func (r *reads) BookingsByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*booking.Booking, error) {
	docs, err := r.b.bookingsByCustomer(ctx, customerID.String(), limit)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list customer bookings", err)
	}
	return decodeBookings(docs)
}

func (r *reads) ExpiredPendingBookings(ctx context.Context, now time.Time, limit int) ([]*booking.Booking, error) {
	docs, err := r.b.expiredPending(ctx, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list expired bookings", err)
	}
	// A malformed booking must not stall every sweep after it.
	out := make([]*booking.Booking, 0, len(docs))
	for _, d := range docs {
		b, err := decodeBooking(d.body)
		if err != nil {
			slog.Error("skipping undecodable booking", "booking_id", d.id, "error", err.Error())
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeBookings(docs []document) ([]*booking.Booking, error) {
	out := make([]*booking.Booking, 0, len(docs))
	for _, d := range docs {
		b, err := decodeBooking(d.body)
		if err != nil {
			return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode booking "+d.id, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *reads) VoucherByCode(ctx context.Context, code voucher.Code) (*voucher.Voucher, error) {
	d, err := r.load(ctx, Vouchers, code.String(), "voucher")
	if err != nil {
		return nil, err
	}
	v, err := decodeVoucher(d.body)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode voucher", err)
	}
	return v, nil
}

func (r *reads) ActiveVouchers(ctx context.Context, now time.Time) ([]*voucher.Voucher, error) {
	docs, err := r.b.activeVouchers(ctx)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list active vouchers", err)
	}
	out := make([]*voucher.Voucher, 0, len(docs))
	for _, d := range docs {
		v, err := decodeVoucher(d.body)
		if err != nil {
			return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode voucher "+d.id, err)
		}
		if v.OnOffer(now) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *reads) ShowtimeByID(ctx context.Context, id uuid.UUID) (*showtime.Showtime, error) {
	d, err := r.load(ctx, Showtimes, id.String(), "showtime")
	if err != nil {
		return nil, err
	}
	st, err := decodeShowtime(d.body)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode showtime", err)
	}
	return st, nil
}

func (r *reads) LoyaltyAccount(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error) {
	d, ok, err := r.b.get(ctx, Customers, customerID.String())
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load customer", err)
	}
	if !ok {
		return loyalty.NewAccount(customerID), nil
	}
	acc, found, err := decodeLoyalty(customerID, d.body)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode loyalty account", err)
	}
	if !found {
		return loyalty.NewAccount(customerID), nil
	}
	return acc, nil
}
