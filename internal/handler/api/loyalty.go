package api

import (
	"net/http"

	resdto "cinebooking/internal/handler/dto/response"
	"cinebooking/internal/handler/httperr"
	"cinebooking/internal/handler/middleware"
	"cinebooking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type LoyaltyHandler struct {
	q queries.LoyaltyQueries
}

func NewLoyaltyHandler(q queries.LoyaltyQueries) *LoyaltyHandler {
	return &LoyaltyHandler{q: q}
}

func (h *LoyaltyHandler) Me(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoCustomer, "Unauthorized", nil)
		return
	}
	view, err := h.q.GetAccount(c.Request.Context(), customerID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLoyaltyView(view))
}
