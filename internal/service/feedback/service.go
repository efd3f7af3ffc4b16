package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/rating"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/pkg/logger"
)

// SubmitInput is a rating submission
type SubmitInput struct {
	RideID  uuid.UUID
	RateeID uuid.UUID
	Role    rating.Role
	Score   int
	Comment string
}

// Service accepts ratings on behalf of the rating store. The booking
// engine only reads obligations through the Gate.
type Service struct {
	ratings      rating.Repository
	rides        ride.Repository
	reservations reservation.Repository
	logger       *logger.Logger
	now          func() time.Time
}

// NewService creates a rating service
func NewService(ratings rating.Repository, rides ride.Repository, reservations reservation.Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		ratings:      ratings,
		rides:        rides,
		reservations: reservations,
		logger:       log,
		now:          time.Now,
	}
}

// WithClock overrides the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit stores a rating after checking that the ride is completed and both
// users took part in it in the stated roles
func (s *Service) Submit(ctx context.Context, raterID uuid.UUID, in SubmitInput) (*rating.Rating, error) {
	r := &rating.Rating{
		ID:        uuid.New(),
		RideID:    in.RideID,
		RaterID:   raterID,
		RateeID:   in.RateeID,
		Role:      in.Role,
		Score:     in.Score,
		Comment:   in.Comment,
		CreatedAt: s.now(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rd, err := s.rides.GetByID(ctx, in.RideID)
	if err != nil {
		return nil, err
	}
	if rd.Status != ride.StatusCompleted {
		return nil, rating.ErrRideNotComplete
	}

	// role names the ratee: a passenger rates the driver, the driver rates a passenger
	var passengerID uuid.UUID
	switch in.Role {
	case rating.RoleDriver:
		if rd.DriverID != in.RateeID {
			return nil, rating.ErrNotParticipant
		}
		passengerID = raterID
	case rating.RolePassenger:
		if rd.DriverID != raterID {
			return nil, rating.ErrNotParticipant
		}
		passengerID = in.RateeID
	}
	if err := s.requireAccepted(ctx, rd.ID, passengerID); err != nil {
		return nil, err
	}

	exists, err := s.ratings.Exists(ctx, r.RideID, r.RaterID, r.RateeID, r.Role)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, rating.ErrAlreadyRated
	}
	if err := s.ratings.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("Rating submitted",
		logger.ID("ride_id", r.RideID),
		logger.ID("rater_id", r.RaterID),
		logger.String("role", string(r.Role)),
		logger.Int("score", r.Score),
	)
	return r, nil
}

// ListForUser returns ratings received by the user
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*rating.Rating, error) {
	return s.ratings.ListByRatee(ctx, userID)
}

func (s *Service) requireAccepted(ctx context.Context, rideID, passengerID uuid.UUID) error {
	list, err := s.reservations.ListByRide(ctx, rideID)
	if err != nil {
		return err
	}
	for _, res := range list {
		if res.PassengerID == passengerID && res.Status == reservation.StatusAccepted {
			return nil
		}
	}
	return rating.ErrNotParticipant
}
