package payment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

func (s Status) String() string { return string(s) }

func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// Payment is created inside the idempotent charge path and never rewritten
// once terminal: a retry with the same key returns the memoized response
// instead of mutating this row again.
type Payment struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	UserID        uuid.UUID
	AmountCents   int64
	Status        Status
	PaymentMethod string
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewPending(bookingID, userID uuid.UUID, amountCents int64, method string, now time.Time) *Payment {
	return &Payment{
		ID:            uuid.New(),
		BookingID:     bookingID,
		UserID:        userID,
		AmountCents:   amountCents,
		Status:        StatusPending,
		PaymentMethod: method,
		TransactionID: uuid.New().String(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ChargeResult is the (payment_id, status, message, transaction_id) tuple
// a charge attempt returns, success or decline alike.
type ChargeResult struct {
	PaymentID     uuid.UUID
	Status        Status
	Message       string
	TransactionID string
}
