package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lodgeworks/booking-saga/internal/domain/inventory"
)

// InventoryClient is the saga orchestrator's view of Inventory: a
// remote-call-shaped boundary carrying its own deadline per call, even
// though Inventory runs in-process here (it is never exposed over its own
// HTTP router — spec non-goal). Every method returns errors pre-classified
// via errs.Classify so the saga's failure classifier never has to guess.
type InventoryClient interface {
	Reserve(ctx context.Context, req ReserveRequest) (*inventory.ReserveResult, error)
	Confirm(ctx context.Context, bookingID uuid.UUID) error
	Release(ctx context.Context, req ReleaseRequest) error
}

type ReserveRequest struct {
	RoomID         string
	CheckIn        time.Time
	CheckOut       time.Time
	Quantity       int64
	IdempotencyKey string
}

type ReleaseRequest struct {
	RoomID         string
	CheckIn        time.Time
	CheckOut       time.Time
	Quantity       int64
	BookingID      *uuid.UUID
}
