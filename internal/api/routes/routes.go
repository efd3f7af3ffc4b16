package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gocomet/carpool/internal/api/handlers"
	"github.com/gocomet/carpool/internal/api/middleware"
)

// SetupRoutes configures all API routes. nrApp may be nil when APM is disabled.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, jwtSecret string, nrApp *newrelic.Application) {
	r.Use(gin.Recovery(), middleware.RequestID())

	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}
	r.Use(middleware.Metrics(), middleware.AccessLog(h.Logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1", middleware.Auth(jwtSecret))
	{
		// WebSocket connection
		v1.GET("/ws", h.HandleWebSocket)

		// Ride endpoints
		rides := v1.Group("/rides")
		{
			rides.POST("", h.CreateRide)
			rides.GET("/search", h.SearchRides)
			rides.GET("/:id", h.GetRide)
			rides.PATCH("/:id", h.EditRide)
			rides.POST("/:id/cancel", h.CancelRide)
			rides.GET("/:id/permissions", h.GetPermissions)
			rides.GET("/:id/reservations", h.ListRideReservations)
			rides.POST("/:id/reservations", h.CreateReservation)
		}

		// Reservation endpoints
		reservations := v1.Group("/reservations")
		{
			reservations.POST("/:id/accept", h.AcceptReservation)
			reservations.POST("/:id/reject", h.RejectReservation)
			reservations.POST("/:id/cancel", h.CancelReservation)
			reservations.POST("/:id/kick", h.KickPassenger)
		}

		// Caller-scoped endpoints
		me := v1.Group("/me")
		{
			me.GET("/rides", h.ListMyRides)
			me.GET("/reservations", h.ListMyReservations)
			me.GET("/obligations", h.PendingObligations)
		}

		// Rating endpoints
		v1.POST("/ratings", h.SubmitRating)
		v1.GET("/users/:id/ratings", h.ListUserRatings)
	}
}
