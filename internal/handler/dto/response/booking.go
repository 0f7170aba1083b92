package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/lodgeworks/booking-saga/internal/domain/booking"
)

type BookingResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	RoomID     string     `json:"room_id"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   time.Time  `json:"check_out"`
	Quantity   int64      `json:"quantity"`
	TotalPrice int64      `json:"total_price"`
	Status     string     `json:"status"`
	SagaStep   string     `json:"saga_step"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Message    string     `json:"message,omitempty"`
}

func FromBooking(b *booking.Booking, message string) *BookingResponse {
	return &BookingResponse{
		ID:         b.ID(),
		UserID:     b.UserID(),
		RoomID:     b.RoomID(),
		CheckIn:    b.CheckInDate(),
		CheckOut:   b.CheckOutDate(),
		Quantity:   b.Quantity(),
		TotalPrice: b.TotalPrice(),
		Status:     b.Status().String(),
		SagaStep:   b.SagaStep().String(),
		PaymentID:  b.PaymentID(),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
		Message:    message,
	}
}

func FromBookingList(bookings []*booking.Booking) []*BookingResponse {
	out := make([]*BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = FromBooking(b, "")
	}
	return out
}
