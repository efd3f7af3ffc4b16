package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a domain event
type Type string

const (
	TypeReservationCreated   Type = "reservation.created"
	TypeReservationAccepted  Type = "reservation.accepted"
	TypeReservationRejected  Type = "reservation.rejected"
	TypeReservationCancelled Type = "reservation.cancelled"
	TypePassengerKicked      Type = "passenger.kicked"
	TypeRideCancelled        Type = "ride.cancelled"
)

// Event is emitted after a committed transition. Recipients lists the users
// a notification system should inform.
type Event struct {
	ID            uuid.UUID   `json:"id"`
	Type          Type        `json:"type"`
	RideID        uuid.UUID   `json:"ride_id"`
	ReservationID *uuid.UUID  `json:"reservation_id,omitempty"`
	ActorID       uuid.UUID   `json:"actor_id"`
	Recipients    []uuid.UUID `json:"recipients"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// Emitter accepts events without waiting for delivery
type Emitter interface {
	Emit(event Event)
}

// New builds an event with a fresh id
func New(t Type, rideID, actorID uuid.UUID, at time.Time, recipients ...uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		RideID:     rideID,
		ActorID:    actorID,
		Recipients: recipients,
		OccurredAt: at,
	}
}

// ForReservation sets the reservation reference
func (e Event) ForReservation(id uuid.UUID) Event {
	e.ReservationID = &id
	return e
}

// NopEmitter discards events
type NopEmitter struct{}

func (NopEmitter) Emit(Event) {}
