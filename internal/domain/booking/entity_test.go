//go:build unit

package booking_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgeworks/booking-saga/internal/domain/booking"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()

	testCases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		quantity int64
		wantErr  bool
	}{
		{
			name:     "valid range and quantity",
			checkIn:  now,
			checkOut: now.AddDate(0, 0, 2),
			quantity: 1,
		},
		{
			name:     "checkout equal to checkin is invalid",
			checkIn:  now,
			checkOut: now,
			quantity: 1,
			wantErr:  true,
		},
		{
			name:     "checkout before checkin is invalid",
			checkIn:  now,
			checkOut: now.AddDate(0, 0, -1),
			quantity: 1,
			wantErr:  true,
		},
		{
			name:     "zero quantity is invalid",
			checkIn:  now,
			checkOut: now.AddDate(0, 0, 1),
			quantity: 0,
			wantErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := booking.New(userID, "room-1", tc.checkIn, tc.checkOut, tc.quantity, now)
			if tc.wantErr {
				require.Error(t, err)
				require.Nil(t, b)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, b)
			assert.Equal(t, booking.StatusPending, b.Status())
			assert.Equal(t, booking.StepReserveSent, b.SagaStep())
			assert.Equal(t, "booking-"+b.ID().String(), b.IdempotencyKey())
		})
	}
}

func TestBookingTransitions(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)

	b, err := booking.New(uuid.New(), "room-1", now, now.AddDate(0, 0, 1), 2, now)
	require.NoError(t, err)

	b.MarkReserveOK(5000, later)
	assert.Equal(t, booking.StepReserveOK, b.SagaStep())
	assert.Equal(t, int64(5000), b.TotalPrice())

	b.MarkPaymentSent(later)
	assert.Equal(t, booking.StepPaymentSent, b.SagaStep())

	paymentID := uuid.New()
	b.MarkConfirmed(paymentID, later)
	assert.Equal(t, booking.StatusConfirmed, b.Status())
	assert.Equal(t, booking.StepConfirmed, b.SagaStep())
	require.NotNil(t, b.PaymentID())
	assert.Equal(t, paymentID, *b.PaymentID())
}

func TestTouchUnclearLeavesSagaStepUnchanged(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := booking.New(uuid.New(), "room-1", now, now.AddDate(0, 0, 1), 1, now)
	require.NoError(t, err)

	stepBefore := b.SagaStep()
	later := now.Add(time.Hour)
	b.TouchUnclear(later)

	assert.Equal(t, stepBefore, b.SagaStep())
	assert.Equal(t, later, b.UpdatedAt())
}

func TestIsStuckAndShouldGiveUp(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := booking.New(uuid.New(), "room-1", now, now.AddDate(0, 0, 1), 1, now)
	require.NoError(t, err)

	assert.False(t, b.IsStuck(now, 10*time.Minute))
	assert.True(t, b.IsStuck(now.Add(11*time.Minute), 10*time.Minute))
	assert.False(t, b.ShouldGiveUp(now.Add(11*time.Minute), 24*time.Hour))
	assert.True(t, b.ShouldGiveUp(now.Add(25*time.Hour), 24*time.Hour))
}

func TestMarkFailedIsTerminal(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := booking.New(uuid.New(), "room-1", now, now.AddDate(0, 0, 1), 1, now)
	require.NoError(t, err)

	b.MarkFailed(now.Add(time.Minute))
	assert.True(t, b.Status().IsTerminal())
	assert.False(t, b.SagaStep().IsStuckCandidate())
}
