package reservation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// Status represents reservation status
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

const MaxNoteLength = 500

var ErrNoteTooLong = apperrors.Validation("note is too long", nil)

// Reservation is a passenger's request to occupy one seat on a ride
type Reservation struct {
	ID          uuid.UUID `json:"id"`
	RideID      uuid.UUID `json:"ride_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	Status      Status    `json:"status"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository interface
type Repository interface {
	Create(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	// ListByRide returns the ride's reservations ordered by creation time
	ListByRide(ctx context.Context, rideID uuid.UUID) ([]*Reservation, error)
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*Reservation, error)
	// FindActive returns the passenger's pending or accepted reservation on
	// the ride, or nil when there is none.
	FindActive(ctx context.Context, rideID, passengerID uuid.UUID) (*Reservation, error)
	CountByStatus(ctx context.Context, rideID uuid.UUID, status Status) (int, error)
	// UpdateStatus is a compare-and-set and fails with ErrStaleStatus when the
	// stored status is not from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusCancelled},
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo checks the reservation state machine
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the reservation holds or requests a seat
func (r *Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusAccepted
}

// NormalizeNote trims the free-text note and bounds its length
func NormalizeNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if len([]rune(note)) > MaxNoteLength {
		return "", ErrNoteTooLong
	}
	return note, nil
}

// Clone returns a copy of the reservation
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
