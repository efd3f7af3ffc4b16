package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/reservation"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// ReservationStore implements reservation.Repository
type ReservationStore struct {
	db *DB
}

var _ reservation.Repository = (*ReservationStore)(nil)

func (s *ReservationStore) Create(ctx context.Context, res *reservation.Reservation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.reservations[res.ID]; exists {
		return fmt.Errorf("reservation %s already exists", res.ID)
	}
	if _, ok := s.db.rides[res.RideID]; !ok {
		return apperrors.ErrRideNotFound
	}
	s.db.reservations[res.ID] = res.Clone()
	return nil
}

func (s *ReservationStore) GetByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	res, ok := s.db.reservations[id]
	if !ok {
		return nil, apperrors.ErrReservationNotFound
	}
	return res.Clone(), nil
}

func (s *ReservationStore) ListByRide(ctx context.Context, rideID uuid.UUID) ([]*reservation.Reservation, error) {
	return s.list(func(res *reservation.Reservation) bool { return res.RideID == rideID }), nil
}

func (s *ReservationStore) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*reservation.Reservation, error) {
	return s.list(func(res *reservation.Reservation) bool { return res.PassengerID == passengerID }), nil
}

func (s *ReservationStore) FindActive(ctx context.Context, rideID, passengerID uuid.UUID) (*reservation.Reservation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, res := range s.db.reservations {
		if res.RideID == rideID && res.PassengerID == passengerID && res.IsActive() {
			return res.Clone(), nil
		}
	}
	return nil, nil
}

func (s *ReservationStore) CountByStatus(ctx context.Context, rideID uuid.UUID, status reservation.Status) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	n := 0
	for _, res := range s.db.reservations {
		if res.RideID == rideID && res.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *ReservationStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to reservation.Status) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	res, ok := s.db.reservations[id]
	if !ok {
		return apperrors.ErrReservationNotFound
	}
	if res.Status != from {
		return apperrors.ErrStaleStatus
	}
	res.Status = to
	res.UpdatedAt = time.Now()
	return nil
}

func (s *ReservationStore) list(keep func(*reservation.Reservation) bool) []*reservation.Reservation {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]*reservation.Reservation, 0)
	for _, res := range s.db.reservations {
		if keep(res) {
			out = append(out, res.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
