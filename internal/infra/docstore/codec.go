package docstore

import (
	"encoding/json"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/loyalty"
	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	errUnknownSeatStatus    = errs.New("unknown seat status in document")
	errUnknownBookingStatus = errs.New("unknown booking status in document")
)

type seatDoc struct {
	Row       string     `json:"row"`
	Col       int        `json:"col"`
	Class     string     `json:"class"`
	Price     int64      `json:"price"`
	Status    string     `json:"status"`
	HolderID  *uuid.UUID `json:"holderId,omitempty"`
	BookingID *uuid.UUID `json:"bookingId,omitempty"`
}

type showtimeDoc struct {
	ID        uuid.UUID          `json:"id"`
	MovieID   string             `json:"movieId"`
	RoomID    string             `json:"roomId"`
	StartsAt  time.Time          `json:"startTime"`
	EndsAt    time.Time          `json:"endTime"`
	SeatMap   map[string]seatDoc `json:"seatMap"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func encodeShowtime(st *showtime.Showtime) ([]byte, error) {
	seats := st.Seats()
	doc := showtimeDoc{
		ID:        st.ID(),
		MovieID:   st.MovieID(),
		RoomID:    st.RoomID(),
		StartsAt:  st.StartsAt(),
		EndsAt:    st.EndsAt(),
		SeatMap:   make(map[string]seatDoc, len(seats)),
		CreatedAt: st.CreatedAt(),
		UpdatedAt: st.UpdatedAt(),
	}
	for code, s := range seats {
		doc.SeatMap[code] = seatDoc{
			Row:       s.Row,
			Col:       s.Column,
			Class:     string(s.Class),
			Price:     s.Price,
			Status:    string(s.Status),
			HolderID:  s.HolderID,
			BookingID: s.BookingID,
		}
	}
	return json.Marshal(doc)
}

func decodeShowtime(body []byte) (*showtime.Showtime, error) {
	var doc showtimeDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	seats := make(map[string]showtime.Seat, len(doc.SeatMap))
	for code, s := range doc.SeatMap {
		status := showtime.SeatStatus(s.Status)
		if !status.IsValid() {
			return nil, errUnknownSeatStatus
		}
		seats[code] = showtime.Seat{
			Code:      code,
			Row:       s.Row,
			Column:    s.Col,
			Class:     showtime.SeatClass(s.Class),
			Price:     s.Price,
			Status:    status,
			HolderID:  s.HolderID,
			BookingID: s.BookingID,
		}
	}
	return showtime.Reconstruct(doc.ID, doc.MovieID, doc.RoomID, doc.StartsAt, doc.EndsAt, seats, doc.CreatedAt, doc.UpdatedAt), nil
}

// Times used by queries are stored as unix milliseconds so the postgres backend
// can index them through generated columns.
type bookingDoc struct {
	ID             uuid.UUID  `json:"id"`
	CustomerID     uuid.UUID  `json:"customerId"`
	ShowtimeID     uuid.UUID  `json:"showtimeId"`
	ShowtimeStart  time.Time  `json:"showtimeStart"`
	Seats          []string   `json:"seats"`
	SeatPrice      int64      `json:"seatPrice"`
	OriginalPrice  int64      `json:"originalPrice"`
	DiscountAmount int64      `json:"discountAmount"`
	FinalPrice     int64      `json:"finalPrice"`
	VoucherCode    *string    `json:"voucherCode,omitempty"`
	Status         string     `json:"status"`
	CreatedAtMs    int64      `json:"createdAtMs"`
	ExpiresAtMs    int64      `json:"expiresAtMs"`
	PaymentMethod  *string    `json:"paymentMethod,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	Receipt        *string    `json:"receipt,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func encodeBooking(b *booking.Booking) ([]byte, error) {
	s := b.Snapshot()
	return json.Marshal(bookingDoc{
		ID:             s.ID,
		CustomerID:     s.CustomerID,
		ShowtimeID:     s.ShowtimeID,
		ShowtimeStart:  s.ShowtimeStart,
		Seats:          s.Seats,
		SeatPrice:      s.SeatPrice,
		OriginalPrice:  s.OriginalPrice,
		DiscountAmount: s.Discount,
		FinalPrice:     b.FinalPrice(),
		VoucherCode:    s.VoucherCode,
		Status:         string(s.Status),
		CreatedAtMs:    s.CreatedAt.UnixMilli(),
		ExpiresAtMs:    s.ExpiresAt.UnixMilli(),
		PaymentMethod:  s.PaymentMethod,
		PaidAt:         s.PaidAt,
		Receipt:        s.Receipt,
		CancelledAt:    s.CancelledAt,
		UpdatedAt:      s.UpdatedAt,
	})
}

func decodeBooking(body []byte) (*booking.Booking, error) {
	var doc bookingDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	status := booking.Status(doc.Status)
	if !status.IsValid() {
		return nil, errUnknownBookingStatus
	}
	return booking.Reconstruct(booking.Snapshot{
		ID:            doc.ID,
		CustomerID:    doc.CustomerID,
		ShowtimeID:    doc.ShowtimeID,
		ShowtimeStart: doc.ShowtimeStart,
		Seats:         doc.Seats,
		SeatPrice:     doc.SeatPrice,
		OriginalPrice: doc.OriginalPrice,
		Discount:      doc.DiscountAmount,
		VoucherCode:   doc.VoucherCode,
		Status:        status,
		CreatedAt:     time.UnixMilli(doc.CreatedAtMs).UTC(),
		ExpiresAt:     time.UnixMilli(doc.ExpiresAtMs).UTC(),
		PaymentMethod: doc.PaymentMethod,
		PaidAt:        doc.PaidAt,
		Receipt:       doc.Receipt,
		CancelledAt:   doc.CancelledAt,
		UpdatedAt:     doc.UpdatedAt,
	})
}

type voucherDoc struct {
	Code          string     `json:"code"`
	Kind          string     `json:"discountType"`
	Value         int64      `json:"discountValue"`
	MaxDiscount   *int64     `json:"maxDiscount,omitempty"`
	MinOrderValue int64      `json:"minOrderValue"`
	UsageLimit    int64      `json:"usageLimit"`
	UsedCount     int64      `json:"usedCount"`
	ValidFrom     *time.Time `json:"validFrom,omitempty"`
	ValidTo       *time.Time `json:"validTo,omitempty"`
	Active        bool       `json:"isActive"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func encodeVoucher(v *voucher.Voucher) ([]byte, error) {
	d := v.Discount()
	return json.Marshal(voucherDoc{
		Code:          v.Code().String(),
		Kind:          string(d.Kind()),
		Value:         d.Value(),
		MaxDiscount:   d.MaxDiscount(),
		MinOrderValue: v.MinOrderValue(),
		UsageLimit:    v.UsageLimit(),
		UsedCount:     v.UsedCount(),
		ValidFrom:     v.ValidFrom(),
		ValidTo:       v.ValidTo(),
		Active:        v.IsActive(),
		Description:   v.Description(),
		CreatedAt:     v.CreatedAt(),
		UpdatedAt:     v.UpdatedAt(),
	})
}

func decodeVoucher(body []byte) (*voucher.Voucher, error) {
	var doc voucherDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return voucher.New(voucher.Params{
		Code:          doc.Code,
		Kind:          voucher.Kind(doc.Kind),
		Value:         doc.Value,
		MaxDiscount:   doc.MaxDiscount,
		MinOrderValue: doc.MinOrderValue,
		UsageLimit:    doc.UsageLimit,
		UsedCount:     doc.UsedCount,
		ValidFrom:     doc.ValidFrom,
		ValidTo:       doc.ValidTo,
		Active:        doc.Active,
		Description:   doc.Description,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	})
}

// The customer record belongs to the identity service; only the loyalty field is ours.
const loyaltyField = "loyalty"

type loyaltyDoc struct {
	TotalSpending int64     `json:"totalSpending"`
	Points        int64     `json:"points"`
	Rank          string    `json:"rank"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func decodeLoyalty(customerID uuid.UUID, body []byte) (*loyalty.Account, bool, error) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, false, err
	}
	raw, ok := record[loyaltyField]
	if !ok {
		return nil, false, nil
	}
	var doc loyaltyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, err
	}
	return loyalty.Reconstruct(customerID, doc.TotalSpending, doc.Points, loyalty.Rank(doc.Rank), doc.UpdatedAt), true, nil
}

// mergeLoyalty writes the account into an existing customer record, keeping every other field.
func mergeLoyalty(existing []byte, acc *loyalty.Account) ([]byte, error) {
	record := map[string]json.RawMessage{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &record); err != nil {
			return nil, err
		}
	}
	raw, err := json.Marshal(loyaltyDoc{
		TotalSpending: acc.Spending(),
		Points:        acc.Points(),
		Rank:          acc.Rank().String(),
		UpdatedAt:     acc.UpdatedAt(),
	})
	if err != nil {
		return nil, err
	}
	record[loyaltyField] = raw
	if _, ok := record["id"]; !ok {
		id, err := json.Marshal(acc.CustomerID().String())
		if err != nil {
			return nil, err
		}
		record["id"] = id
	}
	return json.Marshal(record)
}
