package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/api/middleware"
	"github.com/gocomet/carpool/internal/service/booking"
	"github.com/gocomet/carpool/internal/service/feedback"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
	"github.com/gocomet/carpool/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Booking  *booking.Service
	Ratings  *feedback.Service
	Gate     *feedback.Gate
	Hub      *websocket.Hub
	Upgrader Upgrader
	Logger   *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(bookings *booking.Service, ratings *feedback.Service, gate *feedback.Gate, hub *websocket.Hub, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handlers{
		Booking:  bookings,
		Ratings:  ratings,
		Gate:     gate,
		Hub:      hub,
		Upgrader: NewUpgrader(1024, 1024, nil),
		Logger:   log,
	}
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	if apperrors.CodeOf(err) == apperrors.CodeInternal {
		h.Logger.Error("Request failed",
			logger.String("route", c.FullPath()),
			logger.Err(err),
		)
	}
	middleware.RespondError(c, err)
}

// bindFailed reports a malformed body or query
func (h *Handlers) bindFailed(c *gin.Context, err error) {
	h.respondError(c, apperrors.Validation("Invalid request payload", err).WithDetails(err.Error()))
}

// actor returns the authenticated user or aborts with 401
func (h *Handlers) actor(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		h.respondError(c, apperrors.ErrUnauthenticated)
	}
	return id, ok
}

// pathID parses a uuid path parameter or aborts with 400
func (h *Handlers) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.respondError(c, apperrors.Validation("Invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
