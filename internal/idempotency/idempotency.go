package idempotency

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

// Record is the durable memo written in the same transaction as the effect
// it describes: (key, response, created_at). Never mutated once written.
type Record struct {
	Key             string
	ResponseJSON    []byte
	CreatedAtUnixNs int64
}

// DurableStore is the service's own transactional database. It is the
// source of truth; a cache miss or cache error always falls back here.
type DurableStore interface {
	// Get returns (record, true, nil) on hit, (zero, false, nil) on a
	// clean miss, or a non-nil error if the store could not answer safely
	// — callers must map that to ServiceUnavailable and never treat it as
	// a miss.
	Get(ctx context.Context, key string) (Record, bool, error)
}

// FastCache is the optional accelerator. Every method degrades to a no-op
// on error: the durable store is always the fallback.
type FastCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Lookup tries the fast cache first (best-effort), then the durable store
// (authoritative). A durable-store error is the only case that must stop
// the caller from proceeding — it is returned wrapped, marked with
// ErrIdempotencyCheckFailed and classified as KindServiceUnavailable.
// hits and misses are the caller's already-labeled counters (e.g.
// IdempotencyHitsTotal.WithLabelValues("inventory")); a nil counter is a
// silent no-op so tests can omit them.
func Lookup(ctx context.Context, cache FastCache, durable DurableStore, key string, logger *slog.Logger, hits, misses prometheus.Counter) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	if cache != nil {
		if payload, hit, err := cache.Get(ctx, key); err != nil {
			logger.Warn("idempotency fast cache read failed, falling through to durable store",
				slog.String("idempotency_key", key), slog.Any("error", err))
		} else if hit {
			incIfSet(hits)
			return payload, true, nil
		}
	}

	record, hit, err := durable.Get(ctx, key)
	if err != nil {
		wrapped := errs.Mark(errs.Wrap(err, "idempotency durable store lookup failed"), errs.ErrIdempotencyCheckFailed)
		return nil, false, errs.Classify(errs.KindServiceUnavailable, wrapped)
	}
	if !hit {
		incIfSet(misses)
		return nil, false, nil
	}
	incIfSet(hits)
	return record.ResponseJSON, true, nil
}

func incIfSet(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// WarmCache best-effort writes the fast cache outside of any transaction.
// Failures are logged and ignored.
func WarmCache(ctx context.Context, cache FastCache, key string, payload []byte, logger *slog.Logger) {
	if cache == nil || key == "" {
		return
	}
	if err := cache.Set(ctx, key, payload); err != nil {
		logger.Warn("idempotency fast cache write failed",
			slog.String("idempotency_key", key), slog.Any("error", err))
	}
}
