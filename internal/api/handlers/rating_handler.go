package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gocomet/carpool/internal/api/dto"
	"github.com/gocomet/carpool/internal/domain/rating"
)

// PendingObligations handles GET /v1/me/obligations
func (h *Handlers) PendingObligations(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	obligations, err := h.Gate.PendingObligations(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if obligations == nil {
		obligations = []rating.Obligation{}
	}
	c.JSON(http.StatusOK, gin.H{"obligations": obligations, "count": len(obligations)})
}

// SubmitRating handles POST /v1/ratings
func (h *Handlers) SubmitRating(c *gin.Context) {
	raterID, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	r, err := h.Ratings.Submit(c.Request.Context(), raterID, req.Input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// ListUserRatings handles GET /v1/users/:id/ratings
func (h *Handlers) ListUserRatings(c *gin.Context) {
	userID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	ratings, err := h.Ratings.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if ratings == nil {
		ratings = []*rating.Rating{}
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings, "count": len(ratings)})
}
