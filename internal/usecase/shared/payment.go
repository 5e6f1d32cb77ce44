package shared

//go:generate mockgen -source=payment.go -destination=../../../tests/mock/shared/payment.go -package=sharedmock

import (
	"context"

	"cinebooking/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrProvider marks failures talking to a payment provider or reading its data.
var ErrProvider = errs.New("payment provider error")

type PaymentRequest struct {
	BookingID uuid.UUID
	Amount    int64
}

type PaymentInitiation struct {
	// Settled is true when the provider completes payment synchronously.
	Settled     bool
	RedirectURL string
	Deeplink    string
}

type PaymentCallback struct {
	BookingID     uuid.UUID
	Success       bool
	Amount        int64
	TransactionID string
	Message       string
}

type PaymentProvider interface {
	Name() string
	Initiate(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error)
	// VerifyCallback authenticates a provider notification and decodes it.
	VerifyCallback(ctx context.Context, body []byte) (*PaymentCallback, error)
}
