package api

import (
	"net/http"

	reqdto "cinebooking/internal/handler/dto/request"
	resdto "cinebooking/internal/handler/dto/response"
	"cinebooking/internal/handler/httperr"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	cmds commands.BookingCommands
	q    queries.VoucherQueries
}

func NewVoucherHandler(cmds commands.BookingCommands, q queries.VoucherQueries) *VoucherHandler {
	return &VoucherHandler{cmds: cmds, q: q}
}

// List returns the vouchers customers can currently pick from.
func (h *VoucherHandler) List(c *gin.Context) {
	views, err := h.q.ListActive(c.Request.Context())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromVoucherList(views))
}

// Preview prices an order with a voucher. Nothing is redeemed.
func (h *VoucherHandler) Preview(c *gin.Context) {
	var req reqdto.PreviewVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	preview, err := h.cmds.PreviewVoucher(c.Request.Context(), req.Code, *req.OrderTotal)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromVoucherPreview(preview))
}
