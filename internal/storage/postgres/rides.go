package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gocomet/carpool/internal/domain/ride"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// RideRepository implements ride.Repository on PostgreSQL
type RideRepository struct {
	db *sql.DB
}

var _ ride.Repository = (*RideRepository)(nil)

// NewRideRepository creates a ride repository
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db}
}

const rideColumns = `id, driver_id, car_id, origin, destination, stops, departure_time, arrival_time,
	price, total_seats, status, created_at, updated_at`

func (r *RideRepository) Create(ctx context.Context, rd *ride.Ride) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rides (`+rideColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rd.ID, rd.DriverID, nullUUID(rd.CarID), rd.Origin, rd.Destination, pq.Array(rd.Stops),
		rd.DepartureTime, rd.ArrivalTime, rd.Price, rd.TotalSeats, rd.Status, rd.CreatedAt, rd.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

func (r *RideRepository) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	rd, err := scanRide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ride: %w", err)
	}
	return rd, nil
}

func (r *RideRepository) Update(ctx context.Context, rd *ride.Ride) error {
	updatedAt := rd.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE rides
		SET car_id = $1, origin = $2, destination = $3, stops = $4, departure_time = $5,
			arrival_time = $6, price = $7, total_seats = $8, updated_at = $9
		WHERE id = $10 AND status = $11
	`, nullUUID(rd.CarID), rd.Origin, rd.Destination, pq.Array(rd.Stops), rd.DepartureTime,
		rd.ArrivalTime, rd.Price, rd.TotalSeats, updatedAt, rd.ID, ride.StatusActive)
	if err != nil {
		return fmt.Errorf("update ride: %w", err)
	}
	return r.requireRow(ctx, res, rd.ID)
}

func (r *RideRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to ride.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rides SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("update ride status: %w", err)
	}
	return r.requireRow(ctx, res, id)
}

func (r *RideRepository) ListActive(ctx context.Context) ([]*ride.Ride, error) {
	return r.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE status = $1 ORDER BY departure_time ASC`, ride.StatusActive)
}

func (r *RideRepository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*ride.Ride, error) {
	return r.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 ORDER BY departure_time ASC`, driverID)
}

func (r *RideRepository) list(ctx context.Context, query string, args ...interface{}) ([]*ride.Ride, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	defer rows.Close()

	out := make([]*ride.Ride, 0)
	for rows.Next() {
		rd, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// requireRow distinguishes a missing ride from a status mismatch after a
// conditional update touched no rows
func (r *RideRepository) requireRow(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rides WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check ride: %w", err)
	}
	if !exists {
		return apperrors.ErrRideNotFound
	}
	return apperrors.ErrRideNotActive
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRide(s scanner) (*ride.Ride, error) {
	var rd ride.Ride
	var carID uuid.NullUUID
	var stops []string
	err := s.Scan(&rd.ID, &rd.DriverID, &carID, &rd.Origin, &rd.Destination, pq.Array(&stops),
		&rd.DepartureTime, &rd.ArrivalTime, &rd.Price, &rd.TotalSeats, &rd.Status, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if carID.Valid {
		id := carID.UUID
		rd.CarID = &id
	}
	if stops == nil {
		stops = []string{}
	}
	rd.Stops = stops
	return &rd, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
