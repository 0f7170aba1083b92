package recovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/domain/booking"
	"github.com/lodgeworks/booking-saga/internal/infra/repo"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
	"github.com/lodgeworks/booking-saga/internal/pkg/clock"
	"github.com/lodgeworks/booking-saga/internal/saga"
)

const stuckScanBatchSize = 200

// Worker is the periodic recovery task that reclaims bookings stuck
// mid-pipeline. Each tick scans for them, committing the scan transaction
// immediately (FOR UPDATE SKIP LOCKED, released on commit) before driving
// any of them forward — RPCs never happen with a DB transaction open.
type Worker struct {
	pool         *pgxpool.Pool
	bookings     *repo.BookingRepository
	orchestrator *saga.Orchestrator
	clock        clock.Clock
	interval     time.Duration
	stuckAfter   time.Duration
	giveUpAfter  time.Duration
	logger       *slog.Logger
}

func NewWorker(
	pool *pgxpool.Pool,
	bookings *repo.BookingRepository,
	orchestrator *saga.Orchestrator,
	clk clock.Clock,
	interval, stuckAfter, giveUpAfter time.Duration,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		pool:         pool,
		bookings:     bookings,
		orchestrator: orchestrator,
		clock:        clk,
		interval:     interval,
		stuckAfter:   stuckAfter,
		giveUpAfter:  giveUpAfter,
		logger:       logger,
	}
}

// Run blocks, ticking until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil {
				w.logger.Error("recovery tick failed", slog.Any("error", err))
			}
		}
	}
}

// Tick scans for stuck bookings and drives each one forward: give-up for
// anything past the give-up threshold, advance_stuck otherwise.
func (w *Worker) Tick(ctx context.Context) error {
	now := w.clock.Now()
	stuckCutoff := now.Add(-w.stuckAfter)

	var candidates []*booking.Booking
	err := txmanager.RunInTx(ctx, w.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		candidates, err = w.bookings.FindStuck(ctx, tx, stuckCutoff, stuckScanBatchSize)
		return err
	})
	if err != nil {
		return err
	}

	for _, b := range candidates {
		id := b.ID()
		if b.ShouldGiveUp(now, w.giveUpAfter) {
			if _, err := w.orchestrator.GiveUp(ctx, id); err != nil {
				w.logger.Error("give-up failed", slog.String("booking_id", id.String()), slog.Any("error", err))
			}
			continue
		}
		if _, err := w.orchestrator.AdvanceStuck(ctx, id); err != nil {
			w.logger.Error("advance-stuck failed", slog.String("booking_id", id.String()), slog.Any("error", err))
		}
	}
	return nil
}
