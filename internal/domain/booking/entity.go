package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

// Booking is the saga's write-side aggregate: one row in bookings, one
// saga_step, advanced only forward by the orchestrator.
type Booking struct {
	id           uuid.UUID
	userID       uuid.UUID
	roomID       string
	checkInDate  time.Time
	checkOutDate time.Time
	quantity     int64
	totalPrice   int64
	status       Status
	paymentID    *uuid.UUID
	sagaStep     SagaStep
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates a booking in its initial PENDING/RESERVE_SENT state, before
// any remote call has been made. The orchestrator persists it in this
// state before attempting reserve.
func New(userID uuid.UUID, roomID string, checkIn, checkOut time.Time, quantity int64, now time.Time) (*Booking, error) {
	if quantity <= 0 {
		return nil, errs.Wrap(errs.ErrDomainValidation, "quantity must be positive")
	}
	if !checkIn.Before(checkOut) {
		return nil, errs.ErrInvalidDateRange
	}
	return &Booking{
		id:           uuid.New(),
		userID:       userID,
		roomID:       roomID,
		checkInDate:  checkIn,
		checkOutDate: checkOut,
		quantity:     quantity,
		status:       StatusPending,
		sagaStep:     StepReserveSent,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func Reconstruct(
	id, userID uuid.UUID,
	roomID string,
	checkIn, checkOut time.Time,
	quantity, totalPrice int64,
	status Status,
	paymentID *uuid.UUID,
	sagaStep SagaStep,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:           id,
		userID:       userID,
		roomID:       roomID,
		checkInDate:  checkIn,
		checkOutDate: checkOut,
		quantity:     quantity,
		totalPrice:   totalPrice,
		status:       status,
		paymentID:    paymentID,
		sagaStep:     sagaStep,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// IdempotencyKey is the canonical key the orchestrator uses for both
// reserve and charge against this booking.
func (b *Booking) IdempotencyKey() string {
	return "booking-" + b.id.String()
}

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) UserID() uuid.UUID        { return b.userID }
func (b *Booking) RoomID() string           { return b.roomID }
func (b *Booking) CheckInDate() time.Time   { return b.checkInDate }
func (b *Booking) CheckOutDate() time.Time  { return b.checkOutDate }
func (b *Booking) Quantity() int64          { return b.quantity }
func (b *Booking) TotalPrice() int64        { return b.totalPrice }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) PaymentID() *uuid.UUID    { return b.paymentID }
func (b *Booking) SagaStep() SagaStep       { return b.sagaStep }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

// advanceTo moves the saga step forward. Steps are monotonic: the
// orchestrator and recovery worker only ever call this with a step later
// in the pipeline than the current one, or with StepFailed from anywhere.
func (b *Booking) advanceTo(step SagaStep, now time.Time) {
	b.sagaStep = step
	b.updatedAt = now
}

// MarkReserveOK records a successful reserve and the price it returned.
func (b *Booking) MarkReserveOK(totalPrice int64, now time.Time) {
	b.totalPrice = totalPrice
	b.advanceTo(StepReserveOK, now)
}

// MarkPaymentSent is written before the charge RPC, per the step-write
// discipline (write-before, write-after every remote effect).
func (b *Booking) MarkPaymentSent(now time.Time) {
	b.advanceTo(StepPaymentSent, now)
}

// MarkConfirmed is the terminal success transition.
func (b *Booking) MarkConfirmed(paymentID uuid.UUID, now time.Time) {
	b.paymentID = &paymentID
	b.status = StatusConfirmed
	b.advanceTo(StepConfirmed, now)
}

// MarkFailed is the terminal compensated-or-given-up transition.
func (b *Booking) MarkFailed(now time.Time) {
	b.status = StatusFailed
	b.advanceTo(StepFailed, now)
}

// TouchUnclear persists the booking with its saga_step unchanged, marking
// only updated_at — the rule on an unclear remote outcome is to leave
// saga_step as-is rather than guess. This is the only transition that does
// not move the step.
func (b *Booking) TouchUnclear(now time.Time) {
	b.updatedAt = now
}

func (b *Booking) IsStuck(now time.Time, stuckThreshold time.Duration) bool {
	return b.sagaStep.IsStuckCandidate() && now.Sub(b.updatedAt) >= stuckThreshold
}

func (b *Booking) ShouldGiveUp(now time.Time, giveUpThreshold time.Duration) bool {
	return b.sagaStep.IsStuckCandidate() && now.Sub(b.updatedAt) >= giveUpThreshold
}
