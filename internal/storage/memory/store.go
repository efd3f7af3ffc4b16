package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/car"
	"github.com/gocomet/carpool/internal/domain/rating"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
)

// DB is an in-process store shared by the memory repositories. A single
// RWMutex guards all tables so cross-table reads see one snapshot.
type DB struct {
	mu           sync.RWMutex
	rides        map[uuid.UUID]*ride.Ride
	reservations map[uuid.UUID]*reservation.Reservation
	ratings      map[uuid.UUID]*rating.Rating
	cars         map[uuid.UUID]car.Car
}

// NewDB creates an empty store
func NewDB() *DB {
	return &DB{
		rides:        make(map[uuid.UUID]*ride.Ride),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		ratings:      make(map[uuid.UUID]*rating.Rating),
		cars:         make(map[uuid.UUID]car.Car),
	}
}

// Rides returns the ride repository
func (db *DB) Rides() *RideStore {
	return &RideStore{db: db}
}

// Reservations returns the reservation repository
func (db *DB) Reservations() *ReservationStore {
	return &ReservationStore{db: db}
}

// Ratings returns the rating repository
func (db *DB) Ratings() *RatingStore {
	return &RatingStore{db: db}
}

// Cars returns the car lookup
func (db *DB) Cars() *CarStore {
	return &CarStore{db: db}
}
