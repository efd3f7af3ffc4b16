package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/events"
	"github.com/gocomet/carpool/internal/service/capacity"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
)

// CreateReservation requests a seat on a ride. The rating gate runs first,
// then the reserve permission and the one-active-reservation rule.
func (s *Service) CreateReservation(ctx context.Context, passengerID, rideID uuid.UUID, note string) (_ *reservation.Reservation, err error) {
	defer func() { s.observe("create_reservation", err) }()

	if s.gate != nil {
		if err := s.gate.Check(ctx, passengerID); err != nil {
			return nil, err
		}
	}
	note, err = reservation.NormalizeNote(note)
	if err != nil {
		return nil, err
	}

	var created *reservation.Reservation
	var driverID uuid.UUID
	err = s.accountant.Exclusive(ctx, rideID, func(sec *capacity.Section) error {
		r := sec.Ride()
		seats, err := sec.AvailableSeats()
		if err != nil {
			return err
		}
		if err := s.evaluator.CheckReserve(s.input(r, nil, passengerID, seats)); err != nil {
			return err
		}

		existing, err := s.reservations.FindActive(ctx, r.ID, passengerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.ErrAlreadyReserved.WithDetails(map[string]string{"reservation_id": existing.ID.String()})
		}

		now := s.now()
		res := &reservation.Reservation{
			ID:          uuid.New(),
			RideID:      r.ID,
			PassengerID: passengerID,
			Status:      reservation.StatusPending,
			Note:        note,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.reservations.Create(ctx, res); err != nil {
			return err
		}
		created = res
		driverID = r.DriverID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.New(events.TypeReservationCreated, rideID, passengerID, s.now(), driverID).ForReservation(created.ID))
	s.logger.Info("Reservation created",
		logger.ID("reservation_id", created.ID),
		logger.ID("ride_id", rideID),
		logger.ID("passenger_id", passengerID),
	)
	return created, nil
}

// AcceptReservation lets the driver accept a pending reservation. The seat
// check and the transition are atomic; a full ride yields OVERBOOKED.
func (s *Service) AcceptReservation(ctx context.Context, driverID, reservationID uuid.UUID) (_ *reservation.Reservation, err error) {
	defer func() { s.observe("accept_reservation", err) }()

	res, err := s.managePending(ctx, driverID, reservationID, func(sec *capacity.Section, res *reservation.Reservation) error {
		return sec.TryAccept(res)
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.New(events.TypeReservationAccepted, res.RideID, driverID, s.now(), res.PassengerID).ForReservation(res.ID))
	s.logger.Info("Reservation accepted", logger.ID("reservation_id", res.ID), logger.ID("ride_id", res.RideID))
	return res, nil
}

// RejectReservation lets the driver reject a pending reservation
func (s *Service) RejectReservation(ctx context.Context, driverID, reservationID uuid.UUID) (_ *reservation.Reservation, err error) {
	defer func() { s.observe("reject_reservation", err) }()

	res, err := s.managePending(ctx, driverID, reservationID, func(sec *capacity.Section, res *reservation.Reservation) error {
		return s.transition(ctx, res, reservation.StatusRejected)
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.New(events.TypeReservationRejected, res.RideID, driverID, s.now(), res.PassengerID).ForReservation(res.ID))
	s.logger.Info("Reservation rejected", logger.ID("reservation_id", res.ID), logger.ID("ride_id", res.RideID))
	return res, nil
}

// CancelReservation lets the passenger withdraw a pending or accepted
// reservation. An accepted one returns its seat.
func (s *Service) CancelReservation(ctx context.Context, actorID, reservationID uuid.UUID) (_ *reservation.Reservation, err error) {
	defer func() { s.observe("cancel_reservation", err) }()

	var driverID uuid.UUID
	res, err := s.withReservation(ctx, reservationID, func(sec *capacity.Section, res *reservation.Reservation) error {
		if err := s.evaluator.CheckCancelReservation(s.input(sec.Ride(), res, actorID, 0)); err != nil {
			return err
		}
		driverID = sec.Ride().DriverID
		if res.Status == reservation.StatusAccepted {
			return sec.Release(res)
		}
		return s.transition(ctx, res, reservation.StatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.New(events.TypeReservationCancelled, res.RideID, actorID, s.now(), driverID).ForReservation(res.ID))
	s.logger.Info("Reservation cancelled", logger.ID("reservation_id", res.ID), logger.ID("ride_id", res.RideID))
	return res, nil
}

// KickPassenger lets the driver remove an accepted passenger while the
// kick window is open
func (s *Service) KickPassenger(ctx context.Context, driverID, reservationID uuid.UUID) (_ *reservation.Reservation, err error) {
	defer func() { s.observe("kick_passenger", err) }()

	res, err := s.withReservation(ctx, reservationID, func(sec *capacity.Section, res *reservation.Reservation) error {
		if err := s.evaluator.CheckKickPassenger(s.input(sec.Ride(), res, driverID, 0)); err != nil {
			return err
		}
		if res.Status != reservation.StatusAccepted {
			return apperrors.ErrNotAccepted
		}
		return sec.Release(res)
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.New(events.TypePassengerKicked, res.RideID, driverID, s.now(), res.PassengerID).ForReservation(res.ID))
	s.logger.Info("Passenger kicked",
		logger.ID("reservation_id", res.ID),
		logger.ID("ride_id", res.RideID),
		logger.ID("passenger_id", res.PassengerID),
	)
	return res, nil
}

// ListReservationsForRide returns the ride's reservations to its driver,
// oldest first
func (s *Service) ListReservationsForRide(ctx context.Context, actorID, rideID uuid.UUID) (_ []*reservation.Reservation, err error) {
	defer func() { s.observe("list_ride_reservations", err) }()

	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !r.IsDriver(actorID) {
		return nil, apperrors.ErrNotRideDriver
	}
	return s.reservations.ListByRide(ctx, rideID)
}

// ListReservationsForPassenger returns the passenger's own reservations
func (s *Service) ListReservationsForPassenger(ctx context.Context, passengerID uuid.UUID) (_ []*reservation.Reservation, err error) {
	defer func() { s.observe("list_passenger_reservations", err) }()

	return s.reservations.ListByPassenger(ctx, passengerID)
}

// managePending runs fn for a pending reservation after the driver
// permission check
func (s *Service) managePending(ctx context.Context, driverID, reservationID uuid.UUID, fn func(*capacity.Section, *reservation.Reservation) error) (*reservation.Reservation, error) {
	return s.withReservation(ctx, reservationID, func(sec *capacity.Section, res *reservation.Reservation) error {
		if err := s.evaluator.CheckManageReservations(s.input(sec.Ride(), res, driverID, 0)); err != nil {
			return err
		}
		if res.Status != reservation.StatusPending {
			return apperrors.ErrReservationProcessed
		}
		return fn(sec, res)
	})
}

// withReservation enters the exclusive section of the reservation's ride
// and reloads the reservation under it
func (s *Service) withReservation(ctx context.Context, reservationID uuid.UUID, fn func(*capacity.Section, *reservation.Reservation) error) (*reservation.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	var current *reservation.Reservation
	err = s.accountant.Exclusive(ctx, res.RideID, func(sec *capacity.Section) error {
		reloaded, err := s.reservations.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		current = reloaded
		return fn(sec, current)
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// transition applies a status change that does not touch capacity
func (s *Service) transition(ctx context.Context, res *reservation.Reservation, to reservation.Status) error {
	if to == reservation.StatusAccepted {
		return errors.New("accepting must go through the capacity accountant")
	}
	err := s.reservations.UpdateStatus(ctx, res.ID, res.Status, to)
	if err == apperrors.ErrStaleStatus {
		return apperrors.ErrReservationProcessed
	}
	if err != nil {
		return err
	}
	res.Status = to
	return nil
}
