package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/idempotency"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
)

// IdempotencyRepository backs one service's durable idempotency store.
// Inventory and Payment each get their own instance pointed at their own
// table — the two stores are never shared.
type IdempotencyRepository struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewInventoryIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool, tableName: "inventory_idempotency"}
}

func NewPaymentIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool, tableName: "payment_idempotency"}
}

// Insert writes the (key, response) tuple. Must be called in the same
// transaction as the effect it memoizes — a unique violation on key means
// a concurrent request already won and this one should re-read instead.
func (r *IdempotencyRepository) Insert(ctx context.Context, tx txmanager.DBTX, key string, response []byte, now time.Time) error {
	_, err := tx.Exec(ctx, `INSERT INTO `+r.tableName+` (key, response_json, created_at) VALUES ($1, $2, $3)`, key, response, now)
	return WrapRepoErr("insert idempotency record", err)
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string) (idempotency.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT key, response_json, created_at FROM `+r.tableName+` WHERE key = $1`, key)

	var (
		k        string
		response []byte
		created  time.Time
	)
	if err := row.Scan(&k, &response, &created); err != nil {
		if IsKind(WrapRepoErr("get idempotency record", err), KindNotFound) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, WrapRepoErr("get idempotency record", err)
	}
	return idempotency.Record{Key: k, ResponseJSON: response, CreatedAtUnixNs: created.UnixNano()}, true, nil
}

// GetTx is the same lookup scoped to an open transaction. The services'
// duplicate-key re-read paths use Get instead, after their own transaction
// has rolled back.
func (r *IdempotencyRepository) GetTx(ctx context.Context, tx txmanager.DBTX, key string) (idempotency.Record, bool, error) {
	row := tx.QueryRow(ctx, `SELECT key, response_json, created_at FROM `+r.tableName+` WHERE key = $1`, key)

	var (
		k        string
		response []byte
		created  time.Time
	)
	if err := row.Scan(&k, &response, &created); err != nil {
		if IsKind(WrapRepoErr("get idempotency record", err), KindNotFound) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, WrapRepoErr("get idempotency record", err)
	}
	return idempotency.Record{Key: k, ResponseJSON: response, CreatedAtUnixNs: created.UnixNano()}, true, nil
}

var _ idempotency.DurableStore = (*IdempotencyRepository)(nil)
