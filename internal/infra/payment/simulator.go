// Package payment holds the payment provider adapters.
package payment

import (
	"context"
	"errors"

	"cinebooking/internal/usecase/shared"
)

const SimulatorName = "SIMULATOR"

var errSimulatorCallback = errors.New("simulator does not send callbacks")

// Simulator approves every payment on the spot. It backs local runs and demos.
type Simulator struct{}

func NewSimulator() *Simulator { return &Simulator{} }

func (*Simulator) Name() string { return SimulatorName }

func (*Simulator) Initiate(context.Context, shared.PaymentRequest) (*shared.PaymentInitiation, error) {
	return &shared.PaymentInitiation{Settled: true}, nil
}

func (*Simulator) VerifyCallback(context.Context, []byte) (*shared.PaymentCallback, error) {
	return nil, errSimulatorCallback
}
