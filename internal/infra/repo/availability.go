package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/domain/inventory"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
)

type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// Decrement performs a single guarded atomic decrement: it only succeeds
// if available_count can absorb the full quantity. RowsAffected is 1 on
// success, 0 on failure — never negative stock survives this statement.
func (r *AvailabilityRepository) Decrement(ctx context.Context, tx txmanager.DBTX, roomID string, date time.Time, quantity int64) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE room_availability
		SET available_count = available_count - $3, version = version + 1
		WHERE room_id = $1 AND availability_date = $2 AND available_count >= $3
	`, roomID, date, quantity)
	if err != nil {
		return false, WrapRepoErr("decrement availability", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Increment credits stock back during release/expire. Unlike Decrement it
// has no guard: the quantity being credited back was, by construction,
// previously and successfully decremented.
func (r *AvailabilityRepository) Increment(ctx context.Context, tx txmanager.DBTX, roomID string, date time.Time, quantity int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE room_availability
		SET available_count = available_count + $3, version = version + 1
		WHERE room_id = $1 AND availability_date = $2
	`, roomID, date, quantity)
	if err != nil {
		return WrapRepoErr("increment availability", err)
	}
	if tag.RowsAffected() == 0 {
		return WrapRepoErr("increment availability", errNoSuchAvailabilityRow)
	}
	return nil
}

func (r *AvailabilityRepository) Get(ctx context.Context, tx txmanager.DBTX, roomID string, date time.Time) (inventory.Availability, error) {
	row := tx.QueryRow(ctx, `
		SELECT room_id, availability_date, available_count, price_per_night, version
		FROM room_availability
		WHERE room_id = $1 AND availability_date = $2
	`, roomID, date)

	var a inventory.Availability
	err := row.Scan(&a.RoomID, &a.Date, &a.AvailableCount, &a.PricePerNight, &a.Version)
	if err != nil {
		return inventory.Availability{}, WrapRepoErr("get availability", err)
	}
	return a, nil
}

// PricePerNight is a narrow read used by reserve() to compute total_price
// without re-fetching the whole row for every night.
func (r *AvailabilityRepository) PricePerNight(ctx context.Context, tx txmanager.DBTX, roomID string, date time.Time) (int64, error) {
	row := tx.QueryRow(ctx, `
		SELECT price_per_night FROM room_availability WHERE room_id = $1 AND availability_date = $2
	`, roomID, date)
	var price int64
	if err := row.Scan(&price); err != nil {
		return 0, WrapRepoErr("get price per night", err)
	}
	return price, nil
}
