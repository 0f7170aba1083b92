package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/domain/inventory"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
)

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) Insert(ctx context.Context, tx txmanager.DBTX, h inventory.Hold) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO reservation_holds (id, booking_id, room_id, availability_date, quantity, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, h.ID, h.BookingID, h.RoomID, h.Date, h.Quantity, h.ExpiresAt, h.CreatedAt)
	return WrapRepoErr("insert hold", err)
}

// DeleteByBooking deletes every hold for a booking_id and returns the holds
// it removed. release-with-booking-id credits back only these, so a repeat
// call that finds no holds left changes nothing; confirm() ignores them.
func (r *HoldRepository) DeleteByBooking(ctx context.Context, tx txmanager.DBTX, bookingID uuid.UUID) ([]inventory.Hold, error) {
	rows, err := tx.Query(ctx, `
		DELETE FROM reservation_holds WHERE booking_id = $1
		RETURNING id, booking_id, room_id, availability_date, quantity, expires_at, created_at
	`, bookingID)
	if err != nil {
		return nil, WrapRepoErr("delete holds by booking", err)
	}
	defer rows.Close()

	var deleted []inventory.Hold
	for rows.Next() {
		var h inventory.Hold
		if err := rows.Scan(&h.ID, &h.BookingID, &h.RoomID, &h.Date, &h.Quantity, &h.ExpiresAt, &h.CreatedAt); err != nil {
			return nil, WrapRepoErr("scan deleted hold", err)
		}
		deleted = append(deleted, h)
	}
	return deleted, WrapRepoErr("delete holds by booking", rows.Err())
}

// FindExpired selects every hold whose expires_at has passed, for the
// reaper. It makes no RPCs and takes only what the reaper needs to credit
// stock back.
func (r *HoldRepository) FindExpired(ctx context.Context, tx txmanager.DBTX, now time.Time, limit int) ([]inventory.Hold, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, booking_id, room_id, availability_date, quantity, expires_at, created_at
		FROM reservation_holds
		WHERE expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, now, limit)
	if err != nil {
		return nil, WrapRepoErr("find expired holds", err)
	}
	defer rows.Close()

	var out []inventory.Hold
	for rows.Next() {
		var h inventory.Hold
		if err := rows.Scan(&h.ID, &h.BookingID, &h.RoomID, &h.Date, &h.Quantity, &h.ExpiresAt, &h.CreatedAt); err != nil {
			return nil, WrapRepoErr("scan expired hold", err)
		}
		out = append(out, h)
	}
	return out, WrapRepoErr("find expired holds", rows.Err())
}

func (r *HoldRepository) Delete(ctx context.Context, tx txmanager.DBTX, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM reservation_holds WHERE id = $1`, id)
	return WrapRepoErr("delete hold", err)
}
