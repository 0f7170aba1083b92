package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// BookingConfirmed is published on every successful confirm. Consumers
// must treat it as at-least-once and deduplicate by BookingID.
type BookingConfirmed struct {
	BookingID         uuid.UUID `json:"booking_id"`
	UserID            uuid.UUID `json:"user_id"`
	RoomID            string    `json:"room_id"`
	CheckIn           time.Time `json:"check_in"`
	CheckOut          time.Time `json:"check_out"`
	TotalPrice        int64     `json:"total_price"`
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	RecoveryConfirmed bool      `json:"recovery_confirmed"`
}

// Publisher is the message-bus boundary. Message-bus client internals are
// out of scope, so the default implementation below records the event via
// structured logging rather than dispatching to a real broker — the same
// indirection any outbound notification gets behind an interface, just
// without a persisted queue table since nothing here consumes it.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error
}

type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	p.logger.Info("booking confirmed",
		slog.String("booking_id", event.BookingID.String()),
		slog.String("room_id", event.RoomID),
		slog.Int64("total_price", event.TotalPrice),
		slog.Bool("recovery_confirmed", event.RecoveryConfirmed),
	)
	return nil
}
