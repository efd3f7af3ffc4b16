package car

import (
	"context"

	"github.com/google/uuid"
)

// DeletedLabel is shown in place of a car that no longer exists
const DeletedLabel = "Deleted car"

// Car is the read-only view of a driver's vehicle. Car management lives
// outside the booking engine.
type Car struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Make    string    `json:"make"`
	Model   string    `json:"model"`
	Color   string    `json:"color,omitempty"`
	Plate   string    `json:"plate,omitempty"`
	Deleted bool      `json:"deleted"`
}

// Deleted is the sentinel returned for cars that were removed. It is valid
// route data, not an error.
var Deleted = Car{Make: DeletedLabel, Deleted: true}

// Lookup resolves car references held by rides
type Lookup interface {
	// Resolve returns Deleted for a nil id or a removed car
	Resolve(ctx context.Context, id *uuid.UUID) (Car, error)
}

// Label returns a short display name
func (c Car) Label() string {
	if c.Deleted {
		return DeletedLabel
	}
	if c.Model == "" {
		return c.Make
	}
	return c.Make + " " + c.Model
}
