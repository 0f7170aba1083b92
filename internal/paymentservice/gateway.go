package paymentservice

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// Gateway is the replaceable simulation boundary: any implementation just
// needs to decide success/failure for a charge attempt. The contract that
// matters is around it, not inside it — a terminal decision is written
// atomically with the idempotency record, and identical keys never produce
// conflicting terminal decisions.
type Gateway interface {
	Authorize(ctx context.Context, amountCents int64, method string) (approved bool, message string, err error)
}

// SimulatedGateway approves a fixed proportion of charges after a short
// synthetic delay, standing in for a real processor integration.
type SimulatedGateway struct {
	ApprovalRate int // percent, 0-100
	Delay        time.Duration
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{ApprovalRate: 90, Delay: 150 * time.Millisecond}
}

func (g *SimulatedGateway) Authorize(ctx context.Context, amountCents int64, method string) (bool, string, error) {
	select {
	case <-ctx.Done():
		return false, "", ctx.Err()
	case <-time.After(g.Delay):
	}

	roll, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return false, "", err
	}

	if roll.Int64() < int64(g.ApprovalRate) {
		return true, "payment approved", nil
	}
	return false, "payment declined by gateway", nil
}
