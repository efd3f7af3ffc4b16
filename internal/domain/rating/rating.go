package rating

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// Role is the ratee's role on the rated ride
type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

const (
	MinScore         = 1
	MaxScore         = 5
	MaxCommentLength = 1000
)

var (
	ErrInvalidScore    = apperrors.Validation("score must be between 1 and 5", nil)
	ErrInvalidRole     = apperrors.Validation("role must be driver or passenger", nil)
	ErrCommentTooLong  = apperrors.Validation("comment is too long", nil)
	ErrSelfRating      = apperrors.Validation("users cannot rate themselves", nil)
	ErrAlreadyRated    = apperrors.InvalidState("rating already submitted", nil)
	ErrRideNotComplete = apperrors.InvalidState("ride has not been completed", nil)
	ErrNotParticipant  = apperrors.Forbidden("only accepted participants of the ride may rate each other", nil)
)

// Rating is submitted feedback about a ride counterpart
type Rating struct {
	ID        uuid.UUID `json:"id"`
	RideID    uuid.UUID `json:"ride_id"`
	RaterID   uuid.UUID `json:"rater_id"`
	RateeID   uuid.UUID `json:"ratee_id"`
	Role      Role      `json:"role"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Obligation is a mandatory rating the user still owes for a completed ride
type Obligation struct {
	RideID        uuid.UUID `json:"ride_id"`
	CounterpartID uuid.UUID `json:"counterpart_id"`
	Role          Role      `json:"role"`
	DepartureTime time.Time `json:"departure_time"`
}

// Store exposes unresolved obligations; the booking engine only reads it
type Store interface {
	PendingObligations(ctx context.Context, userID uuid.UUID) ([]Obligation, error)
}

// Repository is the full rating store used by the rating submission flow
type Repository interface {
	Store
	Create(ctx context.Context, rating *Rating) error
	Exists(ctx context.Context, rideID, raterID, rateeID uuid.UUID, role Role) (bool, error)
	ListByRatee(ctx context.Context, rateeID uuid.UUID) ([]*Rating, error)
}

// IsValid validates the role
func (r Role) IsValid() bool {
	return r == RoleDriver || r == RolePassenger
}

// Validate checks score, role, comment and self-rating
func (r *Rating) Validate() error {
	if r.Score < MinScore || r.Score > MaxScore {
		return ErrInvalidScore
	}
	if !r.Role.IsValid() {
		return ErrInvalidRole
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if len([]rune(r.Comment)) > MaxCommentLength {
		return ErrCommentTooLong
	}
	if r.RaterID == r.RateeID {
		return ErrSelfRating
	}
	return nil
}
