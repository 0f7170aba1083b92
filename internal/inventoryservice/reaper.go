package inventoryservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/infra/metrics"
	"github.com/lodgeworks/booking-saga/internal/infra/repo"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
	"github.com/lodgeworks/booking-saga/internal/pkg/clock"
)

const reaperBatchSize = 200

// Reaper is the periodic background worker that sweeps expired holds:
// every tick it credits back any hold past its expiry and deletes the row.
// It makes no RPCs — reaper and confirm/release are serialized at the row
// level by the database's FOR UPDATE SKIP LOCKED.
type Reaper struct {
	pool         *pgxpool.Pool
	availability *repo.AvailabilityRepository
	holds        *repo.HoldRepository
	clock        clock.Clock
	interval     time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewReaper(
	pool *pgxpool.Pool,
	availability *repo.AvailabilityRepository,
	holds *repo.HoldRepository,
	clk clock.Clock,
	interval time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Reaper {
	return &Reaper{
		pool:         pool,
		availability: availability,
		holds:        holds,
		clock:        clk,
		interval:     interval,
		metrics:      m,
		logger:       logger,
	}
}

// Run blocks, ticking until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				r.logger.Error("hold reaper tick failed", slog.Any("error", err))
			}
		}
	}
}

// Tick runs one sweep in a single transaction. The number of holds reaped
// is added to ReaperSweptTotal and logged; only an error is returned.
func (r *Reaper) Tick(ctx context.Context) error {
	reaped := 0
	err := txmanager.RunInTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		expired, err := r.holds.FindExpired(ctx, tx, r.clock.Now(), reaperBatchSize)
		if err != nil {
			return err
		}
		for _, h := range expired {
			if err := r.availability.Increment(ctx, tx, h.RoomID, h.Date, h.Quantity); err != nil {
				return err
			}
			if err := r.holds.Delete(ctx, tx, h.ID); err != nil {
				return err
			}
			reaped++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if reaped > 0 {
		r.metrics.ReaperSweptTotal.Add(float64(reaped))
		r.logger.Info("hold reaper swept expired holds", slog.Int("count", reaped))
	}
	return nil
}
