package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/api/dto"
	"github.com/gocomet/carpool/internal/domain/reservation"
)

// CreateReservation handles POST /v1/rides/:id/reservations
func (h *Handlers) CreateReservation(c *gin.Context) {
	passengerID, ok := h.actor(c)
	if !ok {
		return
	}
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateReservationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.bindFailed(c, err)
			return
		}
	}

	res, err := h.Booking.CreateReservation(c.Request.Context(), passengerID, rideID, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ListRideReservations handles GET /v1/rides/:id/reservations
func (h *Handlers) ListRideReservations(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.Booking.ListReservationsForRide(c.Request.Context(), actorID, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondReservations(c, list)
}

// ListMyReservations handles GET /v1/me/reservations
func (h *Handlers) ListMyReservations(c *gin.Context) {
	passengerID, ok := h.actor(c)
	if !ok {
		return
	}

	list, err := h.Booking.ListReservationsForPassenger(c.Request.Context(), passengerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondReservations(c, list)
}

// AcceptReservation handles POST /v1/reservations/:id/accept
func (h *Handlers) AcceptReservation(c *gin.Context) {
	h.reservationAction(c, h.Booking.AcceptReservation)
}

// RejectReservation handles POST /v1/reservations/:id/reject
func (h *Handlers) RejectReservation(c *gin.Context) {
	h.reservationAction(c, h.Booking.RejectReservation)
}

// CancelReservation handles POST /v1/reservations/:id/cancel
func (h *Handlers) CancelReservation(c *gin.Context) {
	h.reservationAction(c, h.Booking.CancelReservation)
}

// KickPassenger handles POST /v1/reservations/:id/kick
func (h *Handlers) KickPassenger(c *gin.Context) {
	h.reservationAction(c, h.Booking.KickPassenger)
}

type reservationOp func(ctx context.Context, actorID, reservationID uuid.UUID) (*reservation.Reservation, error)

func (h *Handlers) reservationAction(c *gin.Context, op reservationOp) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	reservationID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	res, err := op(c.Request.Context(), actorID, reservationID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func respondReservations(c *gin.Context, list []*reservation.Reservation) {
	if list == nil {
		list = []*reservation.Reservation{}
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list, "count": len(list)})
}
