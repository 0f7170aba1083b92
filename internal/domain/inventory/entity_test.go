//go:build unit

package inventory_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lodgeworks/booking-saga/internal/domain/inventory"
)

func TestAvailabilityHasCapacity(t *testing.T) {
	a := inventory.Availability{AvailableCount: 3}
	assert.True(t, a.HasCapacity(3))
	assert.True(t, a.HasCapacity(1))
	assert.False(t, a.HasCapacity(4))
}

func TestNewHoldExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := inventory.NewHold(uuid.New(), "room-1", now, 1, now, 15*time.Minute)

	assert.Equal(t, now.Add(15*time.Minute), h.ExpiresAt)
	assert.False(t, h.IsExpired(now.Add(14*time.Minute)))
	assert.True(t, h.IsExpired(now.Add(16*time.Minute)))
}
