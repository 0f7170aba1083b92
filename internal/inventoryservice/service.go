package inventoryservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/domain/inventory"
	"github.com/lodgeworks/booking-saga/internal/idempotency"
	"github.com/lodgeworks/booking-saga/internal/infra/metrics"
	"github.com/lodgeworks/booking-saga/internal/infra/repo"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
	"github.com/lodgeworks/booking-saga/internal/pkg/clock"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

const idempotencyServiceLabel = "inventory"

// Locker is the distributed-lock strategy used to collapse contention on a
// hot room/night before it ever reaches the database. It is not required
// for correctness — the guarded decrement is — only to cut down on wasted
// transactions under load. A nil Locker degrades to relying solely on the
// guarded decrement.
type Locker interface {
	Acquire(ctx context.Context, key string) (Handle, error)
	Release(ctx context.Context, h Handle) error
}

type Handle = any

type ReserveRequest struct {
	RoomID         string
	CheckIn        time.Time
	CheckOut       time.Time
	Quantity       int64
	IdempotencyKey string
}

type ReleaseRequest struct {
	RoomID    string
	CheckIn   time.Time
	CheckOut  time.Time
	Quantity  int64
	BookingID *uuid.UUID
}

type Service struct {
	pool            *pgxpool.Pool
	availability    *repo.AvailabilityRepository
	holds           *repo.HoldRepository
	idempotencyRepo *repo.IdempotencyRepository
	cache           idempotency.FastCache
	lock            Locker
	clock           clock.Clock
	holdTTL         time.Duration
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

func NewService(
	pool *pgxpool.Pool,
	availability *repo.AvailabilityRepository,
	holds *repo.HoldRepository,
	idempotencyRepo *repo.IdempotencyRepository,
	cache idempotency.FastCache,
	lock Locker,
	clk clock.Clock,
	holdTTL time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		pool:            pool,
		availability:    availability,
		holds:           holds,
		idempotencyRepo: idempotencyRepo,
		cache:           cache,
		lock:            lock,
		clock:           clk,
		holdTTL:         holdTTL,
		metrics:         m,
		logger:          logger,
	}
}

// Reserve runs the idempotency short-circuit, lock acquisition, per-night
// guarded decrement, hold insertion, and the idempotency memo. The
// decrement, hold insertion and memo share one transaction; the lookup, the
// lock and the cache warm run outside it.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (*inventory.ReserveResult, error) {
	if req.IdempotencyKey != "" {
		cached, hit, err := idempotency.Lookup(ctx, s.cache, s.idempotencyRepo, req.IdempotencyKey, s.logger,
			s.metrics.IdempotencyHitsTotal.WithLabelValues(idempotencyServiceLabel),
			s.metrics.IdempotencyMissesTotal.WithLabelValues(idempotencyServiceLabel))
		if err != nil {
			return nil, err
		}
		if hit {
			var result inventory.ReserveResult
			if err := json.Unmarshal(cached, &result); err != nil {
				return nil, errs.Wrap(err, "decode cached reserve response")
			}
			return &result, nil
		}
	}

	nights, err := inventory.Nights(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, errs.Classify(errs.KindBusinessError, err)
	}

	var handle Handle
	if s.lock != nil {
		lockKey := fmt.Sprintf("room:%s:%s", req.RoomID, nights[0].Format("2006-01-02"))
		handle, err = s.lock.Acquire(ctx, lockKey)
		if err != nil {
			return nil, errs.Wrap(err, "acquire reservation lock")
		}
		defer func() {
			if relErr := s.lock.Release(ctx, handle); relErr != nil {
				s.logger.Warn("failed to release reservation lock", slog.Any("error", relErr))
			}
		}()
	}

	result := &inventory.ReserveResult{
		ReservationID: uuid.New(),
		Status:        inventory.StatusReserved,
	}

	bookingID, hasBookingID := parseBookingIdempotencyKey(req.IdempotencyKey)

	txErr := s.reserveTx(ctx, req, nights, bookingID, hasBookingID, result)
	if txErr != nil {
		if req.IdempotencyKey != "" && repo.IsKind(txErr, repo.KindDuplicateKey) {
			return s.reReadReserveResponse(ctx, req.IdempotencyKey)
		}
		return nil, txErr
	}

	if req.IdempotencyKey != "" {
		payload, _ := json.Marshal(result)
		idempotency.WarmCache(ctx, s.cache, req.IdempotencyKey, payload, s.logger)
	}

	return result, nil
}

// reserveTx runs the guarded decrement, hold insertion, and idempotency
// memo in one transaction. A concurrent request retrying the same
// reservation loses the unique-key race on the idempotency insert; the
// caller catches that as a duplicate key and re-reads the winner's
// response instead of surfacing the conflict as a failure.
func (s *Service) reserveTx(ctx context.Context, req ReserveRequest, nights []time.Time, bookingID uuid.UUID, hasBookingID bool, result *inventory.ReserveResult) error {
	return txmanager.RunInTxWithRetry(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		var total int64
		for _, night := range nights {
			price, err := s.availability.PricePerNight(ctx, tx, req.RoomID, night)
			if err != nil {
				return err
			}

			ok, err := s.availability.Decrement(ctx, tx, req.RoomID, night, req.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				s.metrics.InventoryConflictsTotal.WithLabelValues(req.RoomID).Inc()
				return errs.Classify(errs.KindBusinessError, errs.ErrInsufficientAvailability)
			}
			total += price * req.Quantity
		}
		result.TotalPrice = total

		if hasBookingID {
			now := s.clock.Now()
			for _, night := range nights {
				hold := inventory.NewHold(bookingID, req.RoomID, night, req.Quantity, now, s.holdTTL)
				if err := s.holds.Insert(ctx, tx, hold); err != nil {
					return err
				}
			}
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return errs.Wrap(err, "encode reserve response")
		}

		if req.IdempotencyKey != "" {
			if err := s.idempotencyRepo.Insert(ctx, tx, req.IdempotencyKey, payload, s.clock.Now()); err != nil {
				return err
			}
		}
		return nil
	})
}

// reReadReserveResponse re-reads a reservation response memoized by a
// concurrent caller that won the race to insert the same idempotency key.
func (s *Service) reReadReserveResponse(ctx context.Context, key string) (*inventory.ReserveResult, error) {
	record, hit, err := s.idempotencyRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, errs.Wrap(errs.New("idempotency record missing after duplicate key conflict"), "reserve")
	}
	var result inventory.ReserveResult
	if err := json.Unmarshal(record.ResponseJSON, &result); err != nil {
		return nil, errs.Wrap(err, "decode cached reserve response")
	}
	return &result, nil
}

// Confirm deletes every hold for booking_id. Idempotent: a second call
// finds nothing to delete and succeeds as a no-op.
func (s *Service) Confirm(ctx context.Context, bookingID uuid.UUID) error {
	return txmanager.RunInTxWithRetry(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := s.holds.DeleteByBooking(ctx, tx, bookingID)
		return err
	})
}

// Release is compensation: increment availability back for what was
// actually held. With a booking_id it is keyed off hold existence so a
// repeated call is a no-op once the holds are gone; without one the
// caller must not call it twice.
func (s *Service) Release(ctx context.Context, req ReleaseRequest) error {
	return txmanager.RunInTxWithRetry(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		if req.BookingID != nil {
			deleted, err := s.holds.DeleteByBooking(ctx, tx, *req.BookingID)
			if err != nil {
				return err
			}
			for _, h := range deleted {
				if err := s.availability.Increment(ctx, tx, h.RoomID, h.Date, h.Quantity); err != nil {
					return err
				}
			}
			return nil
		}

		nights, err := inventory.Nights(req.CheckIn, req.CheckOut)
		if err != nil {
			return err
		}
		for _, night := range nights {
			if err := s.availability.Increment(ctx, tx, req.RoomID, night, req.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// parseBookingIdempotencyKey recognizes the orchestrator's "booking-{id}"
// key shape and extracts the booking id it encodes.
func parseBookingIdempotencyKey(key string) (uuid.UUID, bool) {
	const prefix = "booking-"
	if !strings.HasPrefix(key, prefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(key, prefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
