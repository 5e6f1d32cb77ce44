package request

type PreviewVoucherRequest struct {
	Code       string `json:"code" binding:"required,max=32"`
	OrderTotal *int64 `json:"order_total" binding:"required,min=0"`
}
