package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/lodgeworks/booking-saga/internal/domain/payment"
)

// PaymentClient is the saga orchestrator's view of Payment, with the same
// remote-call-shaped contract as InventoryClient.
type PaymentClient interface {
	Charge(ctx context.Context, req ChargeRequest) (*payment.ChargeResult, error)
}

type ChargeRequest struct {
	UserID         uuid.UUID
	BookingID      uuid.UUID
	AmountCents    int64
	Method         string
	IdempotencyKey string
}
