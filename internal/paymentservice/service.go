package paymentservice

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/domain/payment"
	"github.com/lodgeworks/booking-saga/internal/idempotency"
	"github.com/lodgeworks/booking-saga/internal/infra/metrics"
	"github.com/lodgeworks/booking-saga/internal/infra/repo"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
	"github.com/lodgeworks/booking-saga/internal/pkg/clock"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

const idempotencyServiceLabel = "payment"

type ChargeRequest struct {
	UserID         uuid.UUID
	BookingID      uuid.UUID
	AmountCents    int64
	Method         string
	IdempotencyKey string
}

// Service simulates an idempotent payment charge: lookup, gateway
// simulation, then one transaction that inserts the payment row already in
// its terminal status together with the idempotency memo. The gateway call
// runs outside any transaction, and no PENDING row is ever committed.
type Service struct {
	pool            *pgxpool.Pool
	payments        *repo.PaymentRepository
	idempotencyRepo *repo.IdempotencyRepository
	cache           idempotency.FastCache
	gateway         Gateway
	clock           clock.Clock
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

func NewService(
	pool *pgxpool.Pool,
	payments *repo.PaymentRepository,
	idempotencyRepo *repo.IdempotencyRepository,
	cache idempotency.FastCache,
	gateway Gateway,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		pool:            pool,
		payments:        payments,
		idempotencyRepo: idempotencyRepo,
		cache:           cache,
		gateway:         gateway,
		clock:           clk,
		metrics:         m,
		logger:          logger,
	}
}

func (s *Service) Charge(ctx context.Context, req ChargeRequest) (*payment.ChargeResult, error) {
	if req.IdempotencyKey != "" {
		cached, hit, err := idempotency.Lookup(ctx, s.cache, s.idempotencyRepo, req.IdempotencyKey, s.logger,
			s.metrics.IdempotencyHitsTotal.WithLabelValues(idempotencyServiceLabel),
			s.metrics.IdempotencyMissesTotal.WithLabelValues(idempotencyServiceLabel))
		if err != nil {
			return nil, err
		}
		if hit {
			var result payment.ChargeResult
			if err := json.Unmarshal(cached, &result); err != nil {
				return nil, errs.Wrap(err, "decode cached charge response")
			}
			return &result, nil
		}
	}

	now := s.clock.Now()
	p := payment.NewPending(req.BookingID, req.UserID, req.AmountCents, req.Method, now)

	approved, message, authErr := s.gateway.Authorize(ctx, req.AmountCents, req.Method)
	if authErr != nil {
		wrapped := errs.Mark(errs.Wrap(authErr, "payment gateway call failed"), errs.ErrPaymentUnavailable)
		return nil, errs.Classify(errs.KindUnclearRemoteOutcome, wrapped)
	}

	if approved {
		p.Status = payment.StatusSuccess
	} else {
		p.Status = payment.StatusFailed
	}
	p.UpdatedAt = s.clock.Now()

	result := &payment.ChargeResult{
		PaymentID:     p.ID,
		Status:        p.Status,
		Message:       message,
		TransactionID: p.TransactionID,
	}

	txErr := txmanager.RunInTxWithRetry(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.payments.Insert(ctx, tx, p); err != nil {
			return err
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return errs.Wrap(err, "encode charge response")
		}

		if req.IdempotencyKey != "" {
			if err := s.idempotencyRepo.Insert(ctx, tx, req.IdempotencyKey, payload, s.clock.Now()); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if req.IdempotencyKey != "" && repo.IsKind(txErr, repo.KindDuplicateKey) {
			return s.reReadChargeResponse(ctx, req.IdempotencyKey)
		}
		return nil, txErr
	}

	if req.IdempotencyKey != "" {
		payload, _ := json.Marshal(result)
		idempotency.WarmCache(ctx, s.cache, req.IdempotencyKey, payload, s.logger)
	}

	if p.Status == payment.StatusFailed {
		return result, errs.Classify(errs.KindBusinessError, errs.ErrPaymentDeclined)
	}
	return result, nil
}

// reReadChargeResponse re-reads a charge response memoized by a concurrent
// caller that won the race to insert the same idempotency key.
func (s *Service) reReadChargeResponse(ctx context.Context, key string) (*payment.ChargeResult, error) {
	record, hit, err := s.idempotencyRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, errs.Wrap(errs.New("idempotency record missing after duplicate key conflict"), "charge")
	}
	var result payment.ChargeResult
	if err := json.Unmarshal(record.ResponseJSON, &result); err != nil {
		return nil, errs.Wrap(err, "decode cached charge response")
	}
	if result.Status == payment.StatusFailed {
		return &result, errs.Classify(errs.KindBusinessError, errs.ErrPaymentDeclined)
	}
	return &result, nil
}
