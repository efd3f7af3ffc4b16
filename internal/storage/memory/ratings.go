package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/rating"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
)

// RatingStore implements rating.Repository. Obligations are derived from
// completed rides, their accepted reservations and submitted ratings.
type RatingStore struct {
	db *DB
}

var _ rating.Repository = (*RatingStore)(nil)

func (s *RatingStore) Create(ctx context.Context, r *rating.Rating) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.existsLocked(r.RideID, r.RaterID, r.RateeID, r.Role) {
		return rating.ErrAlreadyRated
	}
	cp := *r
	s.db.ratings[r.ID] = &cp
	return nil
}

func (s *RatingStore) Exists(ctx context.Context, rideID, raterID, rateeID uuid.UUID, role rating.Role) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.existsLocked(rideID, raterID, rateeID, role), nil
}

func (s *RatingStore) ListByRatee(ctx context.Context, rateeID uuid.UUID) ([]*rating.Rating, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]*rating.Rating, 0)
	for _, r := range s.db.ratings {
		if r.RateeID == rateeID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *RatingStore) PendingObligations(ctx context.Context, userID uuid.UUID) ([]rating.Obligation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]rating.Obligation, 0)
	for _, res := range s.db.reservations {
		if res.Status != reservation.StatusAccepted {
			continue
		}
		r, ok := s.db.rides[res.RideID]
		if !ok || r.Status != ride.StatusCompleted {
			continue
		}

		// only passengers owe a mandatory rating, to the driver
		if res.PassengerID != userID {
			continue
		}
		if !s.existsLocked(r.ID, userID, r.DriverID, rating.RoleDriver) {
			out = append(out, rating.Obligation{
				RideID:        r.ID,
				CounterpartID: r.DriverID,
				Role:          rating.RoleDriver,
				DepartureTime: r.DepartureTime,
			})
		}
	}
	return out, nil
}

func (s *RatingStore) existsLocked(rideID, raterID, rateeID uuid.UUID, role rating.Role) bool {
	for _, r := range s.db.ratings {
		if r.RideID == rideID && r.RaterID == raterID && r.RateeID == rateeID && r.Role == role {
			return true
		}
	}
	return false
}
