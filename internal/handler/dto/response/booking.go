package response

import (
	"time"

	"cinebooking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID             uuid.UUID  `json:"id"`
	ShowtimeID     uuid.UUID  `json:"showtime_id"`
	ShowtimeStart  time.Time  `json:"showtime_start"`
	Seats          []string   `json:"seats"`
	SeatPrice      int64      `json:"seat_price"`
	OriginalPrice  int64      `json:"original_price"`
	DiscountAmount int64      `json:"discount_amount"`
	FinalPrice     int64      `json:"final_price"`
	VoucherCode    *string    `json:"voucher_code,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	PaymentMethod  *string    `json:"payment_method,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	Receipt        *string    `json:"receipt,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

type BookingListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	ShowtimeID    uuid.UUID `json:"showtime_id"`
	ShowtimeStart time.Time `json:"showtime_start"`
	Seats         []string  `json:"seats"`
	FinalPrice    int64     `json:"final_price"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	var res BookingResponse
	// field names match one to one; a failure here is a programming error
	if err := copier.Copy(&res, v); err != nil {
		panic(err)
	}
	return &res
}

func FromBookingList(views []*queries.BookingView) []*BookingListItemResponse {
	res := make([]*BookingListItemResponse, 0, len(views))
	if err := copier.Copy(&res, &views); err != nil {
		panic(err)
	}
	return res
}
