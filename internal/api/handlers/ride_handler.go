package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/api/dto"
	"github.com/gocomet/carpool/internal/service/booking"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
)

// CreateRide handles POST /v1/rides
func (h *Handlers) CreateRide(c *gin.Context) {
	driverID, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	r, err := h.Booking.CreateRide(c.Request.Context(), driverID, req.Input())
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Logger.Info("Ride published",
		logger.ID("ride_id", r.ID),
		logger.ID("driver_id", driverID),
	)
	c.JSON(http.StatusCreated, r)
}

// SearchRides handles GET /v1/rides/search
func (h *Handlers) SearchRides(c *gin.Context) {
	var q dto.SearchRidesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindFailed(c, err)
		return
	}
	date, err := booking.ParseDate(q.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	results, err := h.Booking.SearchRides(c.Request.Context(), booking.SearchQuery{
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        date,
		SeatsNeeded: q.Seats,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if results == nil {
		results = []booking.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"rides": results, "count": len(results)})
}

// GetRide handles GET /v1/rides/:id
func (h *Handlers) GetRide(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.Booking.GetRide(c.Request.Context(), actorID, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetPermissions handles GET /v1/rides/:id/permissions
func (h *Handlers) GetPermissions(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var reservationID *uuid.UUID
	if raw := c.Query("reservation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.respondError(c, apperrors.Validation("Invalid reservation_id", err))
			return
		}
		reservationID = &id
	}

	perms, err := h.Booking.Permissions(c.Request.Context(), actorID, rideID, reservationID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// EditRide handles PATCH /v1/rides/:id
func (h *Handlers) EditRide(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.EditRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	r, err := h.Booking.EditRide(c.Request.Context(), actorID, rideID, req.Input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *Handlers) CancelRide(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	rideID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	r, err := h.Booking.CancelRide(c.Request.Context(), actorID, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListMyRides handles GET /v1/me/rides
func (h *Handlers) ListMyRides(c *gin.Context) {
	driverID, ok := h.actor(c)
	if !ok {
		return
	}

	rides, err := h.Booking.ListRidesForDriver(c.Request.Context(), driverID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if rides == nil {
		rides = []booking.RideSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides, "count": len(rides)})
}
