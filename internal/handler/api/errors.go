package api

import (
	"net/http"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	resdto "cinebooking/internal/handler/dto/response"
	"cinebooking/internal/handler/httperr"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

// abortWithDomainError maps engine errors onto HTTP statuses. Voucher
// rejections carry the machine-readable reason as detail.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, voucher.ErrInvalid):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Voucher cannot be applied",
			resdto.VoucherRejectedDetail{Reason: voucher.Reason(err)})
	case errs.Is(err, commands.ErrShowtimeNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Showtime not found", nil)
	case errs.Is(err, commands.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errs.IsAny(err, showtime.ErrInvalidSeat, booking.ErrNoSeats, booking.ErrDuplicateSeat, booking.ErrTooManySeats):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid seat selection", nil)
	case errs.Is(err, showtime.ErrSeatUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Seat is no longer available", nil)
	case errs.Is(err, commands.ErrOwnerMismatch):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Booking belongs to another customer", nil)
	case errs.Is(err, commands.ErrAlreadyCancelled):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking has been cancelled", nil)
	case errs.Is(err, commands.ErrHoldExpired):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking hold has expired", nil)
	case errs.Is(err, commands.ErrUnsupportedMethod):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unsupported payment method", nil)
	case errs.Is(err, commands.ErrNegativeOrderTotal):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Order total cannot be negative", nil)
	case errs.Is(err, shared.ErrConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Too many concurrent requests, please retry", nil)
	case errs.Is(err, shared.ErrProvider):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment provider unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
