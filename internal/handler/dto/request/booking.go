package request

import (
	"strings"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ShowtimeID  uuid.UUID `json:"showtime_id" binding:"required"`
	Seats       []string  `json:"seats" binding:"required,min=1,max=10,dive,required,max=8"`
	VoucherCode *string   `json:"voucher_code,omitempty" binding:"omitempty,max=32"`
}

// GetVoucherCode treats a blank code as no voucher.
func (r CreateBookingRequest) GetVoucherCode() *string {
	if r.VoucherCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.VoucherCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type ListBookingsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
