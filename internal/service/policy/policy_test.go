package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

var departure = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func testRide(driverID uuid.UUID) *ride.Ride {
	return &ride.Ride{
		ID:            uuid.New(),
		DriverID:      driverID,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(3 * time.Hour),
		TotalSeats:    3,
		Status:        ride.StatusActive,
	}
}

// TestCheckKickPassenger_Window tests the one hour kick window boundary
func TestCheckKickPassenger_Window(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	driverID := uuid.New()
	r := testRide(driverID)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"61 minutes before", departure.Add(-61 * time.Minute), nil},
		{"exactly one hour before", departure.Add(-time.Hour), nil},
		{"59 minutes before", departure.Add(-59 * time.Minute), apperrors.ErrKickWindowClosed},
		{"after departure", departure.Add(time.Minute), apperrors.ErrKickWindowClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.CheckKickPassenger(Input{Now: tt.now, Ride: r, ActorID: driverID})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Same(t, tt.wantErr, err)
			assert.Equal(t, apperrors.CodeWindowClosed, apperrors.CodeOf(err))
		})
	}
}

func TestCheckKickPassenger_OnlyDriver(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	r := testRide(uuid.New())

	err := e.CheckKickPassenger(Input{Now: departure.Add(-2 * time.Hour), Ride: r, ActorID: uuid.New()})

	assert.Same(t, apperrors.ErrNotRideDriver, err)
}

func TestCheckKickPassenger_ConfigurableWindow(t *testing.T) {
	e := NewEvaluator(Config{KickWindow: 30 * time.Minute})
	driverID := uuid.New()

	err := e.CheckKickPassenger(Input{Now: departure.Add(-45 * time.Minute), Ride: testRide(driverID), ActorID: driverID})

	assert.NoError(t, err)
}

// TestCheckCancelRide tests cancellation before departure on active rides only
func TestCheckCancelRide(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	driverID := uuid.New()

	tests := []struct {
		name    string
		status  ride.Status
		now     time.Time
		wantErr error
	}{
		{"active before departure", ride.StatusActive, departure.Add(-time.Second), nil},
		{"at departure", ride.StatusActive, departure, apperrors.ErrDeparted},
		{"cancelled", ride.StatusCancelled, departure.Add(-time.Hour), apperrors.ErrRideNotActive},
		{"completed", ride.StatusCompleted, departure.Add(-time.Hour), apperrors.ErrRideNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRide(driverID)
			r.Status = tt.status
			in := Input{Now: tt.now, Ride: r, ActorID: driverID}

			err := e.CheckCancelRide(in)
			assert.Equal(t, tt.wantErr == nil, e.Evaluate(in).CanCancelRide)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Same(t, tt.wantErr, err)
		})
	}
}

func TestCheckCancelRide_Cutoff(t *testing.T) {
	e := NewEvaluator(Config{KickWindow: time.Hour, CancellationCutoff: 2 * time.Hour})
	driverID := uuid.New()

	err := e.CheckCancelRide(Input{Now: departure.Add(-90 * time.Minute), Ride: testRide(driverID), ActorID: driverID})

	assert.Same(t, apperrors.ErrDeparted, err)
}

func TestCheckReserve(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	driverID, passengerID := uuid.New(), uuid.New()
	before := departure.Add(-time.Hour)

	tests := []struct {
		name    string
		actor   uuid.UUID
		status  ride.Status
		now     time.Time
		seats   int
		wantErr error
	}{
		{"passenger with seats", passengerID, ride.StatusActive, before, 1, nil},
		{"own ride", driverID, ride.StatusActive, before, 1, apperrors.ErrOwnRide},
		{"not active", passengerID, ride.StatusCancelled, before, 1, apperrors.ErrRideNotActive},
		{"departed", passengerID, ride.StatusActive, departure, 1, apperrors.ErrDeparted},
		{"no seats", passengerID, ride.StatusActive, before, 0, apperrors.ErrNoSeats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRide(driverID)
			r.Status = tt.status

			err := e.CheckReserve(Input{Now: tt.now, Ride: r, ActorID: tt.actor, AvailableSeats: tt.seats})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Same(t, tt.wantErr, err)
		})
	}
}

func TestCheckCancelReservation(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	driverID, passengerID := uuid.New(), uuid.New()
	before := departure.Add(-time.Minute)

	tests := []struct {
		name      string
		actor     uuid.UUID
		resStatus reservation.Status
		now       time.Time
		wantErr   error
	}{
		{"pending", passengerID, reservation.StatusPending, before, nil},
		{"accepted", passengerID, reservation.StatusAccepted, before, nil},
		{"driver is not the passenger", driverID, reservation.StatusAccepted, before, apperrors.ErrNotPassenger},
		{"after departure", passengerID, reservation.StatusAccepted, departure, apperrors.ErrDeparted},
		{"rejected", passengerID, reservation.StatusRejected, before, apperrors.ErrReservationProcessed},
		{"cancelled", passengerID, reservation.StatusCancelled, before, apperrors.ErrReservationProcessed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRide(driverID)
			res := &reservation.Reservation{ID: uuid.New(), RideID: r.ID, PassengerID: passengerID, Status: tt.resStatus}

			err := e.CheckCancelReservation(Input{Now: tt.now, Ride: r, Reservation: res, ActorID: tt.actor})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Same(t, tt.wantErr, err)
		})
	}
}

func TestEvaluate_DriverVersusPassenger(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	driverID, passengerID := uuid.New(), uuid.New()
	r := testRide(driverID)
	now := departure.Add(-2 * time.Hour)

	driver := e.Evaluate(Input{Now: now, Ride: r, ActorID: driverID, AvailableSeats: 2})
	assert.Equal(t, Permissions{
		CanCancelRide:         true,
		CanEditRide:           true,
		CanManageReservations: true,
		CanKickPassenger:      true,
	}, driver)

	res := &reservation.Reservation{ID: uuid.New(), RideID: r.ID, PassengerID: passengerID, Status: reservation.StatusPending}
	passenger := e.Evaluate(Input{Now: now, Ride: r, Reservation: res, ActorID: passengerID, AvailableSeats: 2})
	assert.Equal(t, Permissions{
		CanCancelRide:        true,
		CanReserve:           true,
		CanCancelReservation: true,
	}, passenger)
}
