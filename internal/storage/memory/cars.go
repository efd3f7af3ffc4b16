package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/car"
)

// CarStore implements car.Lookup over registered cars
type CarStore struct {
	db *DB
}

var _ car.Lookup = (*CarStore)(nil)

// Put registers or replaces a car
func (s *CarStore) Put(c car.Car) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.cars[c.ID] = c
}

// Remove drops a car; rides still referencing it resolve to car.Deleted
func (s *CarStore) Remove(id uuid.UUID) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.cars, id)
}

func (s *CarStore) Resolve(ctx context.Context, id *uuid.UUID) (car.Car, error) {
	if id == nil {
		return car.Deleted, nil
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	c, ok := s.db.cars[*id]
	if !ok || c.Deleted {
		return car.Deleted, nil
	}
	return c, nil
}
