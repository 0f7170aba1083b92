package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Availability is one (room_id, date) row: the per-night stock counter the
// guarded decrement protects.
type Availability struct {
	RoomID         string
	Date           time.Time
	AvailableCount int64
	PricePerNight  int64 // minor units
	Version        int64
}

func (a Availability) HasCapacity(quantity int64) bool {
	return a.AvailableCount >= quantity
}

// Hold is a reservation's exclusive claim on one (room, date) night,
// created alongside a successful decrement and released by confirm,
// explicit release, or the reaper once expired.
type Hold struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	RoomID    string
	Date      time.Time
	Quantity  int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

func NewHold(bookingID uuid.UUID, roomID string, date time.Time, quantity int64, now time.Time, ttl time.Duration) Hold {
	return Hold{
		ID:        uuid.New(),
		BookingID: bookingID,
		RoomID:    roomID,
		Date:      date,
		Quantity:  quantity,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func (h Hold) IsExpired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// ReserveResult is what a successful reserve() returns to its caller.
type ReserveResult struct {
	ReservationID uuid.UUID
	TotalPrice    int64
	Status        string
}

const StatusReserved = "RESERVED"
