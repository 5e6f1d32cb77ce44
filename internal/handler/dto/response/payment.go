package response

import "cinebooking/internal/usecase/commands"

type PaymentResponse struct {
	Booking     *BookingResponse `json:"booking"`
	Method      string           `json:"method"`
	Settled     bool             `json:"settled"`
	Receipt     string           `json:"receipt,omitempty"`
	RedirectURL string           `json:"redirect_url,omitempty"`
	Deeplink    string           `json:"deeplink,omitempty"`
}

func FromPaymentResult(r *commands.PaymentResult) *PaymentResponse {
	return &PaymentResponse{
		Booking:     FromBookingView(r.Booking),
		Method:      r.Method,
		Settled:     r.Settled,
		Receipt:     r.Receipt,
		RedirectURL: r.RedirectURL,
		Deeplink:    r.Deeplink,
	}
}
