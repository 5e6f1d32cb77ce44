package request

import "github.com/google/uuid"

type ProcessPaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Method    string    `json:"method" binding:"required,max=32"`
}
