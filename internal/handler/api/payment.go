package api

import (
	"log/slog"
	"net/http"

	reqdto "cinebooking/internal/handler/dto/request"
	resdto "cinebooking/internal/handler/dto/response"
	"cinebooking/internal/handler/httperr"
	"cinebooking/internal/handler/middleware"
	"cinebooking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	cmds commands.SettlementCommands
}

func NewPaymentHandler(cmds commands.SettlementCommands) *PaymentHandler {
	return &PaymentHandler{cmds: cmds}
}

func (h *PaymentHandler) Pay(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoCustomer, "Unauthorized", nil)
		return
	}
	var req reqdto.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.ProcessPayment(c.Request.Context(), customerID, req.BookingID, req.Method)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPaymentResult(result))
}

// Webhook always answers 204 so the provider stops redelivering. Failures are
// logged by the settlement engine for reconciliation.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	provider := c.Param("provider")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	body, err := c.GetRawData()
	if err != nil {
		slog.Warn("unreadable payment webhook body", "provider", provider, "error", err.Error())
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.cmds.HandleCallback(c.Request.Context(), provider, body); err != nil {
		slog.Warn("payment webhook acknowledged with error", "provider", provider, "error", err.Error())
	}
	c.Status(http.StatusNoContent)
}
