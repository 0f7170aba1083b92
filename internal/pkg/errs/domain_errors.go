package errs

import "errors"

// Domain-specific sentinel errors shared across the booking, inventory,
// payment, saga, and idempotency packages.
var (
	// Booking / saga errors
	ErrBookingNotFound = errors.New("booking not found")
	ErrPendingUnclear  = errors.New("remote outcome unclear, booking left pending")

	// Inventory errors
	ErrInsufficientAvailability = errors.New("insufficient room availability")
	ErrInvalidDateRange         = errors.New("invalid stay date range")
	ErrLockNotAcquired          = errors.New("distributed lock not acquired")

	// Payment errors
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentUnavailable = errors.New("payment service unavailable")

	// Idempotency errors
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")

	// Validation / operation errors
	ErrDomainValidation        = errors.New("domain validation error")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
