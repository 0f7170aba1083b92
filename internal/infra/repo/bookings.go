package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/domain/booking"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, userID   uuid.UUID
		roomID       string
		checkIn      time.Time
		checkOut     time.Time
		quantity     int64
		totalPrice   int64
		status       string
		paymentID    *uuid.UUID
		sagaStep     string
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(&id, &userID, &roomID, &checkIn, &checkOut, &quantity, &totalPrice,
		&status, &sagaStep, &paymentID, &createdAt, &updatedAt); err != nil {
		return nil, WrapRepoErr("scan booking", err)
	}
	return booking.Reconstruct(id, userID, roomID, checkIn, checkOut, quantity, totalPrice,
		booking.Status(status), paymentID, booking.SagaStep(sagaStep), createdAt, updatedAt), nil
}

const bookingColumns = `id, user_id, room_id, check_in_date, check_out_date, quantity, total_price,
	status, saga_step, payment_id, created_at, updated_at`

// Insert persists a booking's initial PENDING/RESERVE_SENT state, before
// any remote call has been made.
func (r *BookingRepository) Insert(ctx context.Context, tx txmanager.DBTX, b *booking.Booking) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO bookings (id, user_id, room_id, check_in_date, check_out_date, quantity,
			total_price, status, saga_step, payment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, b.ID(), b.UserID(), b.RoomID(), b.CheckInDate(), b.CheckOutDate(), b.Quantity(),
		b.TotalPrice(), string(b.Status()), string(b.SagaStep()), b.PaymentID(), b.CreatedAt(), b.UpdatedAt())
	return WrapRepoErr("insert booking", err)
}

// Update persists every mutable field of the aggregate: status, saga_step,
// total_price, payment_id, updated_at. Called after every saga transition.
func (r *BookingRepository) Update(ctx context.Context, tx txmanager.DBTX, b *booking.Booking) error {
	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $2, saga_step = $3, total_price = $4, payment_id = $5, updated_at = $6
		WHERE id = $1
	`, b.ID(), string(b.Status()), string(b.SagaStep()), b.TotalPrice(), b.PaymentID(), b.UpdatedAt())
	if err != nil {
		return WrapRepoErr("update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return WrapRepoErr("update booking", pgx.ErrNoRows)
	}
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, tx txmanager.DBTX, id uuid.UUID) (*booking.Booking, error) {
	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil && IsKind(err, KindNotFound) {
		return nil, errs.Mark(err, errs.ErrBookingNotFound)
	}
	return b, err
}

// GetForUpdate takes a row-level lock so the recovery worker and a
// request-driven orchestrator never advance the same booking concurrently.
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx txmanager.DBTX, id uuid.UUID) (*booking.Booking, error) {
	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	return scanBooking(row)
}

func (r *BookingRepository) ListForUser(ctx context.Context, tx txmanager.DBTX, userID uuid.UUID) ([]*booking.Booking, error) {
	rows, err := tx.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, WrapRepoErr("list bookings for user", err)
	}
	defer rows.Close()

	var out []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, WrapRepoErr("list bookings for user", rows.Err())
}

// FindStuck selects bookings whose saga_step is mid-pipeline and whose
// updated_at predates the cutoff, locking each row it returns so a
// concurrent recovery pass (or request) can't grab the same one. SKIP
// LOCKED lets a second recovery tick move past rows already claimed rather
// than blocking on them.
func (r *BookingRepository) FindStuck(ctx context.Context, tx txmanager.DBTX, cutoff time.Time, limit int) ([]*booking.Booking, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE saga_step IN ('RESERVE_SENT', 'PAYMENT_SENT') AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, cutoff, limit)
	if err != nil {
		return nil, WrapRepoErr("find stuck bookings", err)
	}
	defer rows.Close()

	var out []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, WrapRepoErr("find stuck bookings", rows.Err())
}
