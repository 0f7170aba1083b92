package saga

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/client"
	"github.com/lodgeworks/booking-saga/internal/domain/booking"
	"github.com/lodgeworks/booking-saga/internal/events"
	"github.com/lodgeworks/booking-saga/internal/infra/metrics"
	"github.com/lodgeworks/booking-saga/internal/infra/repo"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
	"github.com/lodgeworks/booking-saga/internal/pkg/clock"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

const defaultPaymentMethod = "default"

type CreateBookingRequest struct {
	UserID   uuid.UUID
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
	Quantity int64
}

// Orchestrator drives the reserve/pay/confirm pipeline, persisting
// saga_step before and after every remote effect. The recovery worker
// reads bookings but always calls back into AdvanceStuck/GiveUp here
// rather than writing saga_step itself — steps only ever move forward
// through this type.
type Orchestrator struct {
	pool      *pgxpool.Pool
	bookings  *repo.BookingRepository
	inventory client.InventoryClient
	payment   client.PaymentClient
	publisher events.Publisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewOrchestrator(
	pool *pgxpool.Pool,
	bookings *repo.BookingRepository,
	inventory client.InventoryClient,
	payment client.PaymentClient,
	publisher events.Publisher,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		pool:      pool,
		bookings:  bookings,
		inventory: inventory,
		payment:   payment,
		publisher: publisher,
		clock:     clk,
		metrics:   m,
		logger:    logger,
	}
}

// CreateBooking is the client-facing entry point: it creates the booking
// in PENDING/RESERVE_SENT, persists it, then drives the pipeline forward
// from reserve.
func (o *Orchestrator) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Result, error) {
	now := o.clock.Now()
	b, err := booking.New(req.UserID, req.RoomID, req.CheckIn, req.CheckOut, req.Quantity, now)
	if err != nil {
		return nil, err
	}

	if err := o.persistInsert(ctx, b); err != nil {
		return nil, err
	}

	result := o.driveFromReserve(ctx, b, false)
	o.recordOutcome(result.Outcome)
	return result, nil
}

func (o *Orchestrator) GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return o.getBooking(ctx, id)
}

func (o *Orchestrator) ListBookingsForUser(ctx context.Context, userID uuid.UUID) ([]*booking.Booking, error) {
	var out []*booking.Booking
	err := txmanager.RunInTx(ctx, o.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		out, err = o.bookings.ListForUser(ctx, tx, userID)
		return err
	})
	return out, err
}

// AdvanceStuck re-drives a booking that stalled mid-pipeline, retried
// with the exact same idempotency key as the original attempt, since it
// is still derived from the booking id.
func (o *Orchestrator) AdvanceStuck(ctx context.Context, bookingID uuid.UUID) (*Result, error) {
	b, err := o.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status().IsTerminal() {
		return &Result{Booking: b, Outcome: outcomeForStatus(b.Status())}, nil
	}

	o.metrics.RecoveryActionsTotal.WithLabelValues("advance_stuck").Inc()

	var result *Result
	switch b.SagaStep() {
	case booking.StepReserveSent:
		result = o.driveFromReserve(ctx, b, true)
	case booking.StepReserveOK, booking.StepPaymentSent:
		result = o.driveFromPayment(ctx, b, true)
	default:
		result = &Result{Booking: b, Outcome: outcomeForStatus(b.Status())}
	}
	o.recordOutcome(result.Outcome)
	return result, nil
}

// GiveUp implements the recovery worker's give-up policy, asymmetric by
// design. RESERVE_SENT is safe to release since no charge was ever attempted;
// PAYMENT_SENT must never release, because the charge may have succeeded
// and releasing would yield "charged, no room" — the worst outcome.
func (o *Orchestrator) GiveUp(ctx context.Context, bookingID uuid.UUID) (*Result, error) {
	b, err := o.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status().IsTerminal() {
		return &Result{Booking: b, Outcome: outcomeForStatus(b.Status())}, nil
	}

	if b.SagaStep() == booking.StepReserveSent {
		if relErr := o.inventory.Release(ctx, releaseRequestFor(b)); relErr != nil {
			o.logger.Warn("give-up release failed", slog.String("booking_id", b.ID().String()), slog.Any("error", relErr))
		}
	} else {
		o.logger.Warn("give-up at PAYMENT_SENT: marking FAILED without releasing inventory, operator reconciliation required",
			slog.String("booking_id", b.ID().String()))
	}

	b.MarkFailed(o.clock.Now())
	if err := o.persistUpdate(ctx, b); err != nil {
		return nil, err
	}
	o.metrics.RecoveryActionsTotal.WithLabelValues("give_up").Inc()
	return &Result{Booking: b, Outcome: OutcomeBusinessFailure}, nil
}

func (o *Orchestrator) driveFromReserve(ctx context.Context, b *booking.Booking, recoveryConfirmed bool) *Result {
	start := o.clock.Now()
	reserveResult, err := o.inventory.Reserve(ctx, client.ReserveRequest{
		RoomID:         b.RoomID(),
		CheckIn:        b.CheckInDate(),
		CheckOut:       b.CheckOutDate(),
		Quantity:       b.Quantity(),
		IdempotencyKey: b.IdempotencyKey(),
	})
	o.metrics.SagaStepDuration.WithLabelValues("reserve").Observe(o.clock.Now().Sub(start).Seconds())

	if err != nil {
		switch ClassifyFailure(err) {
		case FailureClear:
			return o.compensateAndFail(ctx, b, err)
		default:
			return o.pendingUnclear(ctx, b)
		}
	}

	b.MarkReserveOK(reserveResult.TotalPrice, o.clock.Now())
	if err := o.persistUpdate(ctx, b); err != nil {
		return &Result{Booking: b, Outcome: OutcomePendingUnclear, Message: "failed to persist RESERVE_OK"}
	}

	return o.driveFromPayment(ctx, b, recoveryConfirmed)
}

func (o *Orchestrator) driveFromPayment(ctx context.Context, b *booking.Booking, recoveryConfirmed bool) *Result {
	if b.SagaStep() != booking.StepPaymentSent {
		b.MarkPaymentSent(o.clock.Now())
		if err := o.persistUpdate(ctx, b); err != nil {
			return &Result{Booking: b, Outcome: OutcomePendingUnclear, Message: "failed to persist PAYMENT_SENT"}
		}
	}

	start := o.clock.Now()
	chargeResult, err := o.payment.Charge(ctx, client.ChargeRequest{
		UserID:         b.UserID(),
		BookingID:      b.ID(),
		AmountCents:    b.TotalPrice(),
		Method:         defaultPaymentMethod,
		IdempotencyKey: b.IdempotencyKey(),
	})
	o.metrics.SagaStepDuration.WithLabelValues("charge").Observe(o.clock.Now().Sub(start).Seconds())

	if err != nil {
		switch ClassifyFailure(err) {
		case FailureClear:
			return o.compensateAndFail(ctx, b, err)
		default:
			return o.pendingUnclear(ctx, b)
		}
	}

	// Payment succeeded: the charge has moved money. From here forward we
	// must never release inventory automatically, even if confirm itself
	// fails — holds are still bounded by their TTL.
	start = o.clock.Now()
	confirmErr := o.inventory.Confirm(ctx, b.ID())
	o.metrics.SagaStepDuration.WithLabelValues("confirm").Observe(o.clock.Now().Sub(start).Seconds())
	if confirmErr != nil {
		o.logger.Error("confirm holds failed after successful charge",
			slog.String("booking_id", b.ID().String()), slog.Any("error", confirmErr))
	}

	b.MarkConfirmed(chargeResult.PaymentID, o.clock.Now())
	if err := o.persistUpdate(ctx, b); err != nil {
		return &Result{Booking: b, Outcome: OutcomePendingUnclear, Message: "failed to persist CONFIRMED"}
	}

	o.publish(ctx, b, recoveryConfirmed)
	return &Result{Booking: b, Outcome: OutcomeConfirmed}
}

func (o *Orchestrator) compensateAndFail(ctx context.Context, b *booking.Booking, cause error) *Result {
	if relErr := o.inventory.Release(ctx, releaseRequestFor(b)); relErr != nil {
		o.logger.Warn("compensation release failed", slog.String("booking_id", b.ID().String()), slog.Any("error", relErr))
	}
	b.MarkFailed(o.clock.Now())
	if err := o.persistUpdate(ctx, b); err != nil {
		return &Result{Booking: b, Outcome: OutcomePendingUnclear, Message: "failed to persist FAILED"}
	}
	return &Result{Booking: b, Outcome: OutcomeBusinessFailure, Message: cause.Error(), Cause: cause}
}

func (o *Orchestrator) pendingUnclear(ctx context.Context, b *booking.Booking) *Result {
	b.TouchUnclear(o.clock.Now())
	if err := o.persistUpdate(ctx, b); err != nil {
		o.logger.Error("failed to persist unclear touch", slog.String("booking_id", b.ID().String()), slog.Any("error", err))
	}
	return &Result{Booking: b, Outcome: OutcomePendingUnclear, Message: "being processed", Cause: errs.ErrPendingUnclear}
}

func (o *Orchestrator) publish(ctx context.Context, b *booking.Booking, recoveryConfirmed bool) {
	event := events.BookingConfirmed{
		BookingID:         b.ID(),
		UserID:            b.UserID(),
		RoomID:            b.RoomID(),
		CheckIn:           b.CheckInDate(),
		CheckOut:          b.CheckOutDate(),
		TotalPrice:        b.TotalPrice(),
		Status:            b.Status().String(),
		Timestamp:         o.clock.Now(),
		RecoveryConfirmed: recoveryConfirmed,
	}
	if err := o.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		o.logger.Warn("failed to publish BookingConfirmed", slog.String("booking_id", b.ID().String()), slog.Any("error", err))
	}
}

func (o *Orchestrator) getBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var b *booking.Booking
	err := txmanager.RunInTx(ctx, o.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		b, err = o.bookings.Get(ctx, tx, id)
		return err
	})
	return b, err
}

func (o *Orchestrator) persistInsert(ctx context.Context, b *booking.Booking) error {
	return txmanager.RunInTxWithRetry(ctx, o.pool, func(ctx context.Context, tx pgx.Tx) error {
		return o.bookings.Insert(ctx, tx, b)
	})
}

// persistUpdate takes the booking row's lock for the duration of the
// write only — never across a remote call — so the recovery worker and a
// request-driven advance of the same booking serialize on this statement
// instead of racing.
func (o *Orchestrator) persistUpdate(ctx context.Context, b *booking.Booking) error {
	return txmanager.RunInTxWithRetry(ctx, o.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := o.bookings.GetForUpdate(ctx, tx, b.ID()); err != nil {
			return err
		}
		return o.bookings.Update(ctx, tx, b)
	})
}

func (o *Orchestrator) recordOutcome(outcome Outcome) {
	o.metrics.SagaOutcomesTotal.WithLabelValues(outcome.String()).Inc()
}

func releaseRequestFor(b *booking.Booking) client.ReleaseRequest {
	id := b.ID()
	return client.ReleaseRequest{
		RoomID:    b.RoomID(),
		CheckIn:   b.CheckInDate(),
		CheckOut:  b.CheckOutDate(),
		Quantity:  b.Quantity(),
		BookingID: &id,
	}
}
