package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lodgeworks/booking-saga/internal/domain/booking"
	reqdto "github.com/lodgeworks/booking-saga/internal/handler/dto/request"
	resdto "github.com/lodgeworks/booking-saga/internal/handler/dto/response"
	"github.com/lodgeworks/booking-saga/internal/handler/httperr"
	"github.com/lodgeworks/booking-saga/internal/infra/repo"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
	"github.com/lodgeworks/booking-saga/internal/saga"
)

var ErrInvalidBookingIDFormat = errs.New("invalid booking ID format")

// Orchestrator is the slice of *saga.Orchestrator the HTTP layer drives.
// Handlers depend on this instead of the concrete type so tests can swap in
// a fake rather than standing up a real saga.Orchestrator (pool, clients,
// publisher and all).
type Orchestrator interface {
	CreateBooking(ctx context.Context, req saga.CreateBookingRequest) (*saga.Result, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	ListBookingsForUser(ctx context.Context, userID uuid.UUID) ([]*booking.Booking, error)
}

type BookingHandler struct {
	orchestrator Orchestrator
}

func NewBookingHandler(orchestrator Orchestrator) *BookingHandler {
	return &BookingHandler{orchestrator: orchestrator}
}

// CreateBooking drives the full reserve/pay/confirm pipeline synchronously
// and maps the resulting Outcome to a distinct response: Created on
// CONFIRMED, Accepted on PendingUnclear, a business error status otherwise.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid create booking request", "error", err)
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.TypeValidation, "invalid request format", nil)
		return
	}

	result, err := h.orchestrator.CreateBooking(c.Request.Context(), saga.CreateBookingRequest{
		UserID:   req.UserID,
		RoomID:   req.RoomID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.handleCreateError(c, err)
		return
	}

	h.respondWithOutcome(c, result, http.StatusCreated)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		slog.Warn("invalid booking id", "id", c.Param("id"), "error", err)
		httperr.AbortWithError(c, http.StatusBadRequest, ErrInvalidBookingIDFormat, httperr.TypeBadRequest, "invalid booking ID format", nil)
		return
	}

	b, err := h.orchestrator.GetBooking(c.Request.Context(), id)
	if err != nil {
		if repo.IsKind(err, repo.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.TypeNotFound, "booking not found", nil)
			return
		}
		slog.Error("unexpected error in get booking", "error", err)
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.TypeInternal, "internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBooking(b, ""))
}

func (h *BookingHandler) ListBookingsForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		slog.Warn("invalid user id", "id", c.Param("userID"), "error", err)
		httperr.AbortWithError(c, http.StatusBadRequest, ErrInvalidBookingIDFormat, httperr.TypeBadRequest, "invalid user ID format", nil)
		return
	}

	bookings, err := h.orchestrator.ListBookingsForUser(c.Request.Context(), userID)
	if err != nil {
		slog.Error("unexpected error in list bookings for user", "user_id", userID, "error", err)
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.TypeInternal, "internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingList(bookings))
}

func (h *BookingHandler) handleCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidDateRange), errors.Is(err, errs.ErrDomainValidation):
		slog.Warn("bad request creating booking", "error", err)
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.TypeValidation, "invalid request parameters", nil)
	default:
		slog.Error("unexpected error creating booking", "error", err)
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.TypeInternal, "internal server error", nil)
	}
}

func (h *BookingHandler) respondWithOutcome(c *gin.Context, result *saga.Result, successStatus int) {
	switch result.Outcome {
	case saga.OutcomeConfirmed:
		c.JSON(successStatus, resdto.FromBooking(result.Booking, ""))
	case saga.OutcomePendingUnclear:
		c.Header("Retry-After", "5")
		c.JSON(http.StatusAccepted, resdto.FromBooking(result.Booking, "being processed"))
	default: // OutcomeBusinessFailure
		cause := result.Cause
		if cause == nil {
			cause = errs.ErrDomainValidation
		}
		httperr.AbortWithError(c, http.StatusUnprocessableEntity,
			cause, httperr.TypeBusiness,
			result.Message, resdto.FromBooking(result.Booking, result.Message))
	}
}
