package request

import (
	"time"

	"github.com/google/uuid"
)

// UserID travels in the body rather than from an auth context: authentication
// is an external collaborator this service does not implement.
type CreateBookingRequest struct {
	UserID   uuid.UUID `json:"user_id" binding:"required"`
	RoomID   string    `json:"room_id" binding:"required"`
	CheckIn  time.Time `json:"check_in" binding:"required"`
	CheckOut time.Time `json:"check_out" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
}
