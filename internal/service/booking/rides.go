package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/car"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/internal/events"
	"github.com/gocomet/carpool/internal/service/capacity"
	"github.com/gocomet/carpool/internal/service/policy"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
)

// CreateRideInput describes a new ride offer
type CreateRideInput struct {
	CarID         *uuid.UUID
	Origin        string
	Destination   string
	Stops         []string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Price         float64
	TotalSeats    int
}

// EditRideInput is a partial ride update. Nil fields stay unchanged and a
// non-nil Stops replaces the whole list.
type EditRideInput struct {
	CarID         *uuid.UUID
	Origin        *string
	Destination   *string
	Stops         *[]string
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	Price         *float64
	TotalSeats    *int
}

// RideSummary is a ride with its derived seat count
type RideSummary struct {
	Ride           *ride.Ride `json:"ride"`
	AvailableSeats int        `json:"available_seats"`
}

// RideView is a ride as seen by one user
type RideView struct {
	RideSummary
	Car         car.Car                  `json:"car"`
	Reservation *reservation.Reservation `json:"reservation,omitempty"`
	Permissions policy.Permissions       `json:"permissions"`
}

// CreateRide publishes a new active ride owned by driverID
func (s *Service) CreateRide(ctx context.Context, driverID uuid.UUID, in CreateRideInput) (_ *ride.Ride, err error) {
	defer func() { s.observe("create_ride", err) }()

	if err := s.requireOwnCar(ctx, driverID, in.CarID); err != nil {
		return nil, err
	}

	now := s.now()
	r := &ride.Ride{
		ID:            uuid.New(),
		DriverID:      driverID,
		CarID:         in.CarID,
		Origin:        in.Origin,
		Destination:   in.Destination,
		Stops:         in.Stops,
		DepartureTime: in.DepartureTime,
		ArrivalTime:   in.ArrivalTime,
		Price:         in.Price,
		TotalSeats:    in.TotalSeats,
		Status:        ride.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.Validate(now); err != nil {
		return nil, err
	}
	if err := s.rides.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("Ride created",
		logger.ID("ride_id", r.ID),
		logger.ID("driver_id", driverID),
		logger.String("origin", r.Origin),
		logger.String("destination", r.Destination),
		logger.Int("total_seats", r.TotalSeats),
	)
	return r, nil
}

// EditRide applies a patch to an active ride before departure. The seat
// count may not drop below the accepted reservations.
func (s *Service) EditRide(ctx context.Context, actorID, rideID uuid.UUID, in EditRideInput) (_ *ride.Ride, err error) {
	defer func() { s.observe("edit_ride", err) }()

	var updated *ride.Ride
	err = s.accountant.Exclusive(ctx, rideID, func(sec *capacity.Section) error {
		current := sec.Ride()
		if err := s.evaluator.CheckEditRide(s.input(current, nil, actorID, 0)); err != nil {
			return err
		}

		next := current.Clone()
		if in.CarID != nil {
			if err := s.requireOwnCar(ctx, actorID, in.CarID); err != nil {
				return err
			}
			next.CarID = in.CarID
		}
		if in.Origin != nil {
			next.Origin = *in.Origin
		}
		if in.Destination != nil {
			next.Destination = *in.Destination
		}
		if in.Stops != nil {
			next.Stops = *in.Stops
		}
		if in.DepartureTime != nil {
			next.DepartureTime = *in.DepartureTime
		}
		if in.ArrivalTime != nil {
			next.ArrivalTime = *in.ArrivalTime
		}
		if in.Price != nil {
			next.Price = *in.Price
		}
		if in.TotalSeats != nil {
			next.TotalSeats = *in.TotalSeats
		}

		now := s.now()
		if err := next.Validate(now); err != nil {
			return err
		}
		if err := sec.EnsureCapacity(next.TotalSeats); err != nil {
			return err
		}
		next.UpdatedAt = now
		if err := s.rides.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ride updated", logger.ID("ride_id", rideID), logger.ID("driver_id", actorID))
	return updated, nil
}

// CancelRide cancels an active ride before departure. Reservations keep
// their status; passengers holding one are notified.
func (s *Service) CancelRide(ctx context.Context, actorID, rideID uuid.UUID) (_ *ride.Ride, err error) {
	defer func() { s.observe("cancel_ride", err) }()

	var cancelled *ride.Ride
	var affected []uuid.UUID
	err = s.accountant.Exclusive(ctx, rideID, func(sec *capacity.Section) error {
		r := sec.Ride()
		if !r.IsDriver(actorID) {
			return apperrors.ErrNotRideDriver
		}
		if err := s.evaluator.CheckCancelRide(s.input(r, nil, actorID, 0)); err != nil {
			return err
		}
		if err := s.rides.UpdateStatus(ctx, r.ID, ride.StatusActive, ride.StatusCancelled); err != nil {
			return err
		}

		list, err := s.reservations.ListByRide(ctx, r.ID)
		if err != nil {
			return err
		}
		for _, res := range list {
			if res.IsActive() {
				affected = append(affected, res.PassengerID)
			}
		}
		cancelled = r.Clone()
		cancelled.Status = ride.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.New(events.TypeRideCancelled, rideID, actorID, s.now(), affected...))
	s.logger.Info("Ride cancelled",
		logger.ID("ride_id", rideID),
		logger.Int("affected_passengers", len(affected)),
	)
	return cancelled, nil
}

// GetRide returns the ride with seats, car and the caller's permissions.
// The caller's own active reservation, if any, is attached.
func (s *Service) GetRide(ctx context.Context, actorID, rideID uuid.UUID) (_ *RideView, err error) {
	defer func() { s.observe("get_ride", err) }()

	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	seats, err := s.accountant.AvailableSeats(ctx, r)
	if err != nil {
		return nil, err
	}
	c, err := s.cars.Resolve(ctx, r.CarID)
	if err != nil {
		return nil, err
	}
	res, err := s.reservations.FindActive(ctx, r.ID, actorID)
	if err != nil {
		return nil, err
	}

	return &RideView{
		RideSummary: RideSummary{Ride: r, AvailableSeats: seats},
		Car:         c,
		Reservation: res,
		Permissions: s.evaluator.Evaluate(s.input(r, res, actorID, seats)),
	}, nil
}

// Permissions evaluates the caller's permission set on a ride, optionally
// against a specific reservation
func (s *Service) Permissions(ctx context.Context, actorID, rideID uuid.UUID, reservationID *uuid.UUID) (_ policy.Permissions, err error) {
	defer func() { s.observe("permissions", err) }()

	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return policy.Permissions{}, err
	}
	seats, err := s.accountant.AvailableSeats(ctx, r)
	if err != nil {
		return policy.Permissions{}, err
	}

	var res *reservation.Reservation
	if reservationID != nil {
		res, err = s.reservations.GetByID(ctx, *reservationID)
		if err != nil {
			return policy.Permissions{}, err
		}
		if res.RideID != r.ID {
			return policy.Permissions{}, apperrors.ErrReservationNotFound
		}
	}
	return s.evaluator.Evaluate(s.input(r, res, actorID, seats)), nil
}

// ListRidesForDriver returns every ride offered by the driver
func (s *Service) ListRidesForDriver(ctx context.Context, driverID uuid.UUID) (_ []RideSummary, err error) {
	defer func() { s.observe("list_driver_rides", err) }()

	rides, err := s.rides.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, rides)
}

func (s *Service) summarize(ctx context.Context, rides []*ride.Ride) ([]RideSummary, error) {
	out := make([]RideSummary, 0, len(rides))
	for _, r := range rides {
		seats, err := s.accountant.AvailableSeats(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, RideSummary{Ride: r, AvailableSeats: seats})
	}
	return out, nil
}

func (s *Service) requireOwnCar(ctx context.Context, driverID uuid.UUID, carID *uuid.UUID) error {
	if carID == nil {
		return ErrCarRequired
	}
	c, err := s.cars.Resolve(ctx, carID)
	if err != nil {
		return err
	}
	if c.Deleted {
		return apperrors.ErrCarNotFound
	}
	if c.OwnerID != driverID {
		return ErrCarNotOwned
	}
	return nil
}
