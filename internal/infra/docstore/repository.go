package docstore

import (
	"context"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/loyalty"
	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra"
	"cinebooking/internal/pkg/errs"

	"github.com/google/uuid"
)

// putErr keeps errWriteConflict in the chain so Within can still retry it.
func putErr(msg string, err error) error {
	if errs.Is(err, errWriteConflict) {
		return infra.WrapRepoErr(infra.KindWriteConflict, msg, err)
	}
	return infra.WrapRepoErr(infra.KindDBFailure, msg, err)
}

type showtimeRepository struct {
	sess session
}

func (r *showtimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*showtime.Showtime, error) {
	d, ok, err := r.sess.get(ctx, Showtimes, id.String())
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load showtime", err)
	}
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "showtime not found")
	}
	st, err := decodeShowtime(d.body)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode showtime", err)
	}
	return st, nil
}

func (r *showtimeRepository) Save(ctx context.Context, st *showtime.Showtime) error {
	body, err := encodeShowtime(st)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode showtime", err)
	}
	if err := r.sess.put(ctx, Showtimes, st.ID().String(), body); err != nil {
		return putErr("failed to save showtime", err)
	}
	return nil
}

type bookingRepository struct {
	sess session
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	d, ok, err := r.sess.get(ctx, Bookings, id.String())
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load booking", err)
	}
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	b, err := decodeBooking(d.body)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode booking", err)
	}
	return b, nil
}

// Create is a blind write, so the commit fails if the id is already taken.
func (r *bookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	body, err := encodeBooking(b)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode booking", err)
	}
	if err := r.sess.put(ctx, Bookings, b.ID().String(), body); err != nil {
		return putErr("failed to create booking", err)
	}
	return nil
}

func (r *bookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	body, err := encodeBooking(b)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode booking", err)
	}
	if err := r.sess.put(ctx, Bookings, b.ID().String(), body); err != nil {
		return putErr("failed to save booking", err)
	}
	return nil
}

type voucherRepository struct {
	sess session
}

func (r *voucherRepository) FindByCode(ctx context.Context, code voucher.Code) (*voucher.Voucher, error) {
	d, ok, err := r.sess.get(ctx, Vouchers, code.String())
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load voucher", err)
	}
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "voucher not found")
	}
	v, err := decodeVoucher(d.body)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindCorruptDocument, "failed to decode voucher", err)
	}
	return v, nil
}

func (r *voucherRepository) Save(ctx context.Context, v *voucher.Voucher) error {
	body, err := encodeVoucher(v)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode voucher", err)
	}
	if err := r.sess.put(ctx, Vouchers, v.Code().String(), body); err != nil {
		return putErr("failed to save voucher", err)
	}
	return nil
}

// customerRepository only touches the loyalty field of a customer record.
// A customer without a record or without loyalty data starts from an empty account.
type customerRepository struct {
	sess session
}

func (r *customerRepository) LoyaltyAccount(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error) {
	d, ok, err := r.sess.get(ctx, Customers, customerID.String())
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

func (r *customerRepository) SaveLoyaltyAccount(ctx context.Context, acc *loyalty.Account) error {
	id := acc.CustomerID().String()
	d, _, err := r.sess.get(ctx, Customers, id)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to load customer", err)
	}
	body, err := mergeLoyalty(d.body, acc)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode loyalty account", err)
	}
	if err := r.sess.put(ctx, Customers, id, body); err != nil {
		return putErr("failed to save loyalty account", err)
	}
	return nil
}
