package policy

import (
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// DefaultKickWindow is how long before departure a driver loses the right
// to remove an accepted passenger.
const DefaultKickWindow = time.Hour

// Config holds the time-window policy values
type Config struct {
	// KickWindow: kicking is allowed while now <= departure - KickWindow
	KickWindow time.Duration
	// CancellationCutoff: cancelling is allowed while now < departure - CancellationCutoff
	CancellationCutoff time.Duration
	// EditCutoff: editing and managing reservations is allowed while now < departure - EditCutoff
	EditCutoff time.Duration
}

// DefaultConfig returns the default policy
func DefaultConfig() Config {
	return Config{KickWindow: DefaultKickWindow}
}

// Input is everything a permission decision depends on
type Input struct {
	Now            time.Time
	Ride           *ride.Ride
	Reservation    *reservation.Reservation
	ActorID        uuid.UUID
	AvailableSeats int
}

// Permissions is the permission set of an actor on a ride
type Permissions struct {
	CanCancelRide         bool `json:"can_cancel_ride"`
	CanEditRide           bool `json:"can_edit_ride"`
	CanManageReservations bool `json:"can_manage_reservations"`
	CanKickPassenger      bool `json:"can_kick_passenger"`
	CanReserve            bool `json:"can_reserve"`
	CanCancelReservation  bool `json:"can_cancel_reservation"`
}

// Evaluator decides time-windowed permissions. It holds no state besides
// its policy and never reads the clock itself.
type Evaluator struct {
	config Config
}

// NewEvaluator creates a new evaluator
func NewEvaluator(config Config) *Evaluator {
	return &Evaluator{config: config}
}

// Config returns the active policy
func (e *Evaluator) Config() Config {
	return e.config
}

// Evaluate computes the whole permission set
func (e *Evaluator) Evaluate(in Input) Permissions {
	p := Permissions{
		CanCancelRide:         e.CheckCancelRide(in) == nil,
		CanEditRide:           e.CheckEditRide(in) == nil,
		CanManageReservations: e.CheckManageReservations(in) == nil,
		CanKickPassenger:      e.CheckKickPassenger(in) == nil,
		CanReserve:            e.CheckReserve(in) == nil,
	}
	if in.Reservation != nil {
		p.CanCancelReservation = e.CheckCancelReservation(in) == nil
	}
	return p
}

// CheckCancelRide: ride active and not yet departed
func (e *Evaluator) CheckCancelRide(in Input) error {
	if !in.Ride.IsActive() {
		return apperrors.ErrRideNotActive
	}
	if !e.beforeCutoff(in.Now, in.Ride, e.config.CancellationCutoff) {
		return apperrors.ErrDeparted
	}
	return nil
}

// CheckEditRide: driver, ride active, before the edit cutoff
func (e *Evaluator) CheckEditRide(in Input) error {
	return e.checkDriverBefore(in, e.config.EditCutoff)
}

// CheckManageReservations: driver, ride active, before the edit cutoff
func (e *Evaluator) CheckManageReservations(in Input) error {
	return e.checkDriverBefore(in, e.config.EditCutoff)
}

// CheckKickPassenger: driver, ride active, at least KickWindow before departure
func (e *Evaluator) CheckKickPassenger(in Input) error {
	if !in.Ride.IsDriver(in.ActorID) {
		return apperrors.ErrNotRideDriver
	}
	if !in.Ride.IsActive() {
		return apperrors.ErrRideNotActive
	}
	if in.Now.After(in.Ride.DepartureTime.Add(-e.config.KickWindow)) {
		return apperrors.ErrKickWindowClosed
	}
	return nil
}

// CheckReserve: not the driver, ride active, not departed, a seat free
func (e *Evaluator) CheckReserve(in Input) error {
	if in.Ride.IsDriver(in.ActorID) {
		return apperrors.ErrOwnRide
	}
	if !in.Ride.IsActive() {
		return apperrors.ErrRideNotActive
	}
	if !in.Now.Before(in.Ride.DepartureTime) {
		return apperrors.ErrDeparted
	}
	if in.AvailableSeats <= 0 {
		return apperrors.ErrNoSeats
	}
	return nil
}

// CheckCancelReservation: reservation's passenger, ride active, before the
// cancellation cutoff, reservation pending or accepted
func (e *Evaluator) CheckCancelReservation(in Input) error {
	if in.Reservation == nil || in.Reservation.PassengerID != in.ActorID {
		return apperrors.ErrNotPassenger
	}
	if !in.Ride.IsActive() {
		return apperrors.ErrRideNotActive
	}
	if !e.beforeCutoff(in.Now, in.Ride, e.config.CancellationCutoff) {
		return apperrors.ErrDeparted
	}
	if !in.Reservation.IsActive() {
		return apperrors.ErrReservationProcessed
	}
	return nil
}

func (e *Evaluator) checkDriverBefore(in Input, cutoff time.Duration) error {
	if !in.Ride.IsDriver(in.ActorID) {
		return apperrors.ErrNotRideDriver
	}
	if !in.Ride.IsActive() {
		return apperrors.ErrRideNotActive
	}
	if !e.beforeCutoff(in.Now, in.Ride, cutoff) {
		return apperrors.ErrDeparted
	}
	return nil
}

func (e *Evaluator) beforeCutoff(now time.Time, r *ride.Ride, cutoff time.Duration) bool {
	return now.Before(r.DepartureTime.Add(-cutoff))
}
