//go:build unit

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgeworks/booking-saga/internal/domain/booking"
	"github.com/lodgeworks/booking-saga/internal/handler/api"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
	"github.com/lodgeworks/booking-saga/internal/saga"
)

// fakeOrchestrator is a hand-rolled stand-in for api.Orchestrator: the
// interface is small enough that a func-field fake reads clearer here than
// a generated mock.
type fakeOrchestrator struct {
	createFn func(ctx context.Context, req saga.CreateBookingRequest) (*saga.Result, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	listFn   func(ctx context.Context, userID uuid.UUID) ([]*booking.Booking, error)
}

func (f *fakeOrchestrator) CreateBooking(ctx context.Context, req saga.CreateBookingRequest) (*saga.Result, error) {
	return f.createFn(ctx, req)
}

func (f *fakeOrchestrator) GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return f.getFn(ctx, id)
}

func (f *fakeOrchestrator) ListBookingsForUser(ctx context.Context, userID uuid.UUID) ([]*booking.Booking, error) {
	return f.listFn(ctx, userID)
}

func newRouter(h *api.BookingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/bookings", h.CreateBooking)
	r.GET("/api/bookings/:id", h.GetBooking)
	r.GET("/api/users/:userID/bookings", h.ListBookingsForUser)
	return r
}

func newTestBooking() *booking.Booking {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b, _ := booking.New(uuid.New(), "room-1", now, now.AddDate(0, 0, 2), 1, now)
	return b
}

func createRequestBody(roomID string) string {
	return `{"user_id":"` + uuid.New().String() + `","room_id":"` + roomID +
		`","check_in":"2026-03-01T00:00:00Z","check_out":"2026-03-03T00:00:00Z","quantity":1}`
}

func TestCreateBooking(t *testing.T) {
	t.Run("confirmed outcome returns 201", func(t *testing.T) {
		b := newTestBooking()
		b.MarkConfirmed(uuid.New(), time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC))
		h := api.NewBookingHandler(&fakeOrchestrator{
			createFn: func(ctx context.Context, req saga.CreateBookingRequest) (*saga.Result, error) {
				return &saga.Result{Booking: b, Outcome: saga.OutcomeConfirmed}, nil
			},
		})
		router := newRouter(h)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(createRequestBody("room-1")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "CONFIRMED", body["status"])
	})

	t.Run("pending unclear outcome returns 202 with Retry-After", func(t *testing.T) {
		b := newTestBooking()
		h := api.NewBookingHandler(&fakeOrchestrator{
			createFn: func(ctx context.Context, req saga.CreateBookingRequest) (*saga.Result, error) {
				return &saga.Result{Booking: b, Outcome: saga.OutcomePendingUnclear, Message: "being processed"}, nil
			},
		})
		router := newRouter(h)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(createRequestBody("room-1")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("business failure returns 422", func(t *testing.T) {
		b := newTestBooking()
		h := api.NewBookingHandler(&fakeOrchestrator{
			createFn: func(ctx context.Context, req saga.CreateBookingRequest) (*saga.Result, error) {
				return &saga.Result{
					Booking: b,
					Outcome: saga.OutcomeBusinessFailure,
					Message: errs.ErrInsufficientAvailability.Error(),
					Cause:   errs.ErrInsufficientAvailability,
				}, nil
			},
		})
		router := newRouter(h)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(createRequestBody("room-1")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		h := api.NewBookingHandler(&fakeOrchestrator{})
		router := newRouter(h)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{"room_id":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid date range surfaces as 400", func(t *testing.T) {
		h := api.NewBookingHandler(&fakeOrchestrator{
			createFn: func(ctx context.Context, req saga.CreateBookingRequest) (*saga.Result, error) {
				return nil, errs.ErrInvalidDateRange
			},
		})
		router := newRouter(h)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(createRequestBody("room-1")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetBooking(t *testing.T) {
	t.Run("found returns 200", func(t *testing.T) {
		b := newTestBooking()
		h := api.NewBookingHandler(&fakeOrchestrator{
			getFn: func(ctx context.Context, id uuid.UUID) (*booking.Booking, error) { return b, nil },
		})
		router := newRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+b.ID().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		h := api.NewBookingHandler(&fakeOrchestrator{})
		router := newRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/api/bookings/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListBookingsForUser(t *testing.T) {
	userID := uuid.New()
	h := api.NewBookingHandler(&fakeOrchestrator{
		listFn: func(ctx context.Context, id uuid.UUID) ([]*booking.Booking, error) {
			assert.Equal(t, userID, id)
			return []*booking.Booking{newTestBooking()}, nil
		},
	})
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/bookings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 1)
}
