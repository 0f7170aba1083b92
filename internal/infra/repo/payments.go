package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeworks/booking-saga/internal/domain/payment"
	"github.com/lodgeworks/booking-saga/internal/infra/txmanager"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) Insert(ctx context.Context, tx txmanager.DBTX, p *payment.Payment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (id, booking_id, user_id, amount, status, payment_method, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.BookingID, p.UserID, p.AmountCents, string(p.Status), p.PaymentMethod, p.TransactionID, p.CreatedAt, p.UpdatedAt)
	return WrapRepoErr("insert payment", err)
}

// UpdateStatus writes the terminal decision. Payments are never rewritten
// once terminal, so callers only ever invoke this once per row.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, tx txmanager.DBTX, id uuid.UUID, status payment.Status, updatedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE payments SET status = $2, updated_at = $3 WHERE id = $1
	`, id, string(status), updatedAt)
	return WrapRepoErr("update payment status", err)
}

func (r *PaymentRepository) Get(ctx context.Context, tx txmanager.DBTX, id uuid.UUID) (*payment.Payment, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, booking_id, user_id, amount, status, payment_method, transaction_id, created_at, updated_at
		FROM payments WHERE id = $1
	`, id)

	var (
		p      payment.Payment
		status string
	)
	if err := row.Scan(&p.ID, &p.BookingID, &p.UserID, &p.AmountCents, &status, &p.PaymentMethod,
		&p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		wrapped := WrapRepoErr("get payment", err)
		if IsKind(wrapped, KindNotFound) {
			return nil, errs.Mark(wrapped, errs.ErrPaymentNotFound)
		}
		return nil, wrapped
	}
	p.Status = payment.Status(status)
	return &p, nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, tx txmanager.DBTX, bookingID uuid.UUID) (*payment.Payment, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, booking_id, user_id, amount, status, payment_method, transaction_id, created_at, updated_at
		FROM payments WHERE booking_id = $1
	`, bookingID)

	var (
		p      payment.Payment
		status string
	)
	if err := row.Scan(&p.ID, &p.BookingID, &p.UserID, &p.AmountCents, &status, &p.PaymentMethod,
		&p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		wrapped := WrapRepoErr("get payment by booking id", err)
		if IsKind(wrapped, KindNotFound) {
			return nil, errs.Mark(wrapped, errs.ErrPaymentNotFound)
		}
		return nil, wrapped
	}
	p.Status = payment.Status(status)
	return &p, nil
}
