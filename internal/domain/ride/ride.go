package ride

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status represents ride status
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Ride represents a driver-offered trip with fixed seats, route and schedule
type Ride struct {
	ID            uuid.UUID  `json:"id"`
	DriverID      uuid.UUID  `json:"driver_id"`
	CarID         *uuid.UUID `json:"car_id,omitempty"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	Stops         []string   `json:"stops"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   time.Time  `json:"arrival_time"`
	Price         float64    `json:"price"`
	TotalSeats    int        `json:"total_seats"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Repository interface
type Repository interface {
	Create(ctx context.Context, ride *Ride) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	// Update persists the mutable route, schedule, price and seat fields.
	// It fails with ErrRideNotActive when the stored ride is no longer active.
	Update(ctx context.Context, ride *Ride) error
	// UpdateStatus moves a ride from one status to another and fails with
	// ErrRideNotActive when the stored status is not from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	ListActive(ctx context.Context) ([]*Ride, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Ride, error)
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether the ride still accepts changes
func (r *Ride) IsActive() bool {
	return r.Status == StatusActive
}

// IsDriver reports whether userID is the ride's driver
func (r *Ride) IsDriver(userID uuid.UUID) bool {
	return r.DriverID == userID
}

// HasDeparted reports whether departure time has been reached at now
func (r *Ride) HasDeparted(now time.Time) bool {
	return !now.Before(r.DepartureTime)
}

// HasArrived reports whether arrival time has been reached at now
func (r *Ride) HasArrived(now time.Time) bool {
	return !now.Before(r.ArrivalTime)
}

// Clone returns a deep copy so stores never hand out shared state
func (r *Ride) Clone() *Ride {
	if r == nil {
		return nil
	}
	cp := *r
	if r.CarID != nil {
		id := *r.CarID
		cp.CarID = &id
	}
	cp.Stops = append([]string(nil), r.Stops...)
	return &cp
}
