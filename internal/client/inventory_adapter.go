package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lodgeworks/booking-saga/internal/domain/inventory"
	"github.com/lodgeworks/booking-saga/internal/inventoryservice"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

// InventoryAdapter wraps the in-process Inventory service behind the same
// remote-call contract an out-of-process Inventory would have: every call
// gets its own deadline, and a deadline expiry or the service returning an
// unclassified error both become KindUnclearRemoteOutcome — the orchestrator
// must never guess that an unreached deadline means failure.
type InventoryAdapter struct {
	svc     *inventoryservice.Service
	timeout time.Duration
}

func NewInventoryAdapter(svc *inventoryservice.Service, timeout time.Duration) *InventoryAdapter {
	return &InventoryAdapter{svc: svc, timeout: timeout}
}

func (a *InventoryAdapter) Reserve(ctx context.Context, req ReserveRequest) (*inventory.ReserveResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.svc.Reserve(ctx, inventoryservice.ReserveRequest{
		RoomID:         req.RoomID,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Quantity:       req.Quantity,
		IdempotencyKey: req.IdempotencyKey,
	})
	return result, classifyRemoteErr(ctx, err)
}

func (a *InventoryAdapter) Confirm(ctx context.Context, bookingID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return classifyRemoteErr(ctx, a.svc.Confirm(ctx, bookingID))
}

func (a *InventoryAdapter) Release(ctx context.Context, req ReleaseRequest) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return classifyRemoteErr(ctx, a.svc.Release(ctx, inventoryservice.ReleaseRequest{
		RoomID:    req.RoomID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Quantity:  req.Quantity,
		BookingID: req.BookingID,
	}))
}

// classifyRemoteErr normalizes an already-classified error and turns a
// context deadline/cancellation into KindUnclearRemoteOutcome: a transport
// timeout or local deadline exceeded is always unclear, never a business
// failure.
func classifyRemoteErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errs.Classify(errs.KindUnclearRemoteOutcome, err)
	}
	if errs.KindOf(err) != errs.KindInternalError {
		return err // already classified by the service layer
	}
	return errs.Classify(errs.KindUnclearRemoteOutcome, err)
}
