package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/ride"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// RideStore implements ride.Repository
type RideStore struct {
	db *DB
}

var _ ride.Repository = (*RideStore)(nil)

func (s *RideStore) Create(ctx context.Context, r *ride.Ride) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.rides[r.ID]; exists {
		return fmt.Errorf("ride %s already exists", r.ID)
	}
	s.db.rides[r.ID] = r.Clone()
	return nil
}

func (s *RideStore) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.db.rides[id]
	if !ok {
		return nil, apperrors.ErrRideNotFound
	}
	return r.Clone(), nil
}

func (s *RideStore) Update(ctx context.Context, r *ride.Ride) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.rides[r.ID]
	if !ok {
		return apperrors.ErrRideNotFound
	}
	if stored.Status != ride.StatusActive {
		return apperrors.ErrRideNotActive
	}

	updated := r.Clone()
	updated.DriverID = stored.DriverID
	updated.Status = stored.Status
	updated.CreatedAt = stored.CreatedAt
	if updated.UpdatedAt.IsZero() {
		updated.UpdatedAt = time.Now()
	}
	s.db.rides[r.ID] = updated
	return nil
}

func (s *RideStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to ride.Status) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.rides[id]
	if !ok {
		return apperrors.ErrRideNotFound
	}
	if r.Status != from {
		return apperrors.ErrRideNotActive
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

func (s *RideStore) ListActive(ctx context.Context) ([]*ride.Ride, error) {
	return s.list(func(r *ride.Ride) bool { return r.Status == ride.StatusActive }), nil
}

func (s *RideStore) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*ride.Ride, error) {
	return s.list(func(r *ride.Ride) bool { return r.DriverID == driverID }), nil
}

func (s *RideStore) list(keep func(*ride.Ride) bool) []*ride.Ride {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]*ride.Ride, 0)
	for _, r := range s.db.rides {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DepartureTime.Before(out[j].DepartureTime)
	})
	return out
}
