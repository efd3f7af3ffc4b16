package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/car"
)

// CarRepository resolves car references from the cars table owned by the
// profile service
type CarRepository struct {
	db *sql.DB
}

var _ car.Lookup = (*CarRepository)(nil)

// NewCarRepository creates a car lookup
func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) Resolve(ctx context.Context, id *uuid.UUID) (car.Car, error) {
	if id == nil {
		return car.Deleted, nil
	}

	var c car.Car
	var deleted bool
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, make, model, color, plate, deleted_at IS NOT NULL
		FROM cars WHERE id = $1
	`, *id).Scan(&c.ID, &c.OwnerID, &c.Make, &c.Model, &c.Color, &c.Plate, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return car.Deleted, nil
	}
	if err != nil {
		return car.Car{}, fmt.Errorf("resolve car: %w", err)
	}
	if deleted {
		return car.Deleted, nil
	}
	return c, nil
}
