package capacity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/internal/observability"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
)

// Accountant is the single authority on a ride's seat count. Every write
// that changes the accepted count goes through a Section, and sections on
// the same ride are serialized by the Locker.
type Accountant struct {
	locker       Locker
	rides        ride.Repository
	reservations reservation.Repository
	logger       *logger.Logger
}

// NewAccountant creates a new capacity accountant
func NewAccountant(locker Locker, rides ride.Repository, reservations reservation.Repository, log *logger.Logger) *Accountant {
	if log == nil {
		log = logger.NewNop()
	}
	return &Accountant{
		locker:       locker,
		rides:        rides,
		reservations: reservations,
		logger:       log,
	}
}

// AcceptedCount reads the current number of accepted reservations
func (a *Accountant) AcceptedCount(ctx context.Context, rideID uuid.UUID) (int, error) {
	return a.reservations.CountByStatus(ctx, rideID, reservation.StatusAccepted)
}

// AvailableSeats returns total_seats minus the accepted count. It reads a
// snapshot and does not block writers.
func (a *Accountant) AvailableSeats(ctx context.Context, r *ride.Ride) (int, error) {
	accepted, err := a.AcceptedCount(ctx, r.ID)
	if err != nil {
		return 0, err
	}
	return available(r.TotalSeats, accepted), nil
}

// Exclusive runs fn with exclusive access to the ride's reservation set.
// The ride is reloaded after the lock is taken.
func (a *Accountant) Exclusive(ctx context.Context, rideID uuid.UUID, fn func(*Section) error) error {
	start := time.Now()
	unlock, err := a.locker.Lock(ctx, lockKey(rideID))
	observability.RideLockWait.Observe(time.Since(start).Seconds())
	if err != nil {
		return apperrors.Internal("Failed to lock ride", err)
	}
	defer unlock()

	r, err := a.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	return fn(&Section{ctx: ctx, accountant: a, ride: r})
}

// Section is a view of one ride held under its exclusive lock
type Section struct {
	ctx        context.Context
	accountant *Accountant
	ride       *ride.Ride
}

// Ride returns the ride as loaded under the lock
func (s *Section) Ride() *ride.Ride {
	return s.ride
}

// AcceptedCount returns the accepted count under the lock
func (s *Section) AcceptedCount() (int, error) {
	return s.accountant.AcceptedCount(s.ctx, s.ride.ID)
}

// AvailableSeats returns the free seats under the lock
func (s *Section) AvailableSeats() (int, error) {
	accepted, err := s.AcceptedCount()
	if err != nil {
		return 0, err
	}
	return available(s.ride.TotalSeats, accepted), nil
}

// TryAccept checks accepted < total_seats and moves res from pending to
// accepted as one step. It fails with OVERBOOKED and leaves res pending
// when the ride is full.
func (s *Section) TryAccept(res *reservation.Reservation) error {
	if res.RideID != s.ride.ID {
		return fmt.Errorf("reservation %s does not belong to ride %s", res.ID, s.ride.ID)
	}
	accepted, err := s.AcceptedCount()
	if err != nil {
		return err
	}
	if accepted >= s.ride.TotalSeats {
		s.accountant.logger.Info("Accept refused, ride full",
			logger.ID("ride_id", s.ride.ID),
			logger.ID("reservation_id", res.ID),
			logger.Int("accepted", accepted),
			logger.Int("total_seats", s.ride.TotalSeats),
		)
		return apperrors.ErrOverbooked
	}
	if err := s.accountant.reservations.UpdateStatus(s.ctx, res.ID, reservation.StatusPending, reservation.StatusAccepted); err != nil {
		return err
	}
	res.Status = reservation.StatusAccepted
	return nil
}

// Release moves an accepted reservation to cancelled, returning its seat
func (s *Section) Release(res *reservation.Reservation) error {
	if res.RideID != s.ride.ID {
		return fmt.Errorf("reservation %s does not belong to ride %s", res.ID, s.ride.ID)
	}
	err := s.accountant.reservations.UpdateStatus(s.ctx, res.ID, reservation.StatusAccepted, reservation.StatusCancelled)
	if err == apperrors.ErrStaleStatus {
		return apperrors.ErrNotAccepted
	}
	if err != nil {
		return err
	}
	res.Status = reservation.StatusCancelled
	return nil
}

// EnsureCapacity checks that total seats can be set to total without
// falling below the accepted count
func (s *Section) EnsureCapacity(total int) error {
	accepted, err := s.AcceptedCount()
	if err != nil {
		return err
	}
	if total < accepted {
		return apperrors.ErrSeatsBelowAccepted.WithDetails(map[string]int{"accepted": accepted})
	}
	return nil
}

func lockKey(rideID uuid.UUID) string {
	return "ride:" + rideID.String()
}

func available(total, accepted int) int {
	if accepted >= total {
		return 0
	}
	return total - accepted
}
