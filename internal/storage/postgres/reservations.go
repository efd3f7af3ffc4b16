package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gocomet/carpool/internal/domain/reservation"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code for unique_violation
const uniqueViolation = "23505"

// ReservationRepository implements reservation.Repository on PostgreSQL
type ReservationRepository struct {
	db *sql.DB
}

var _ reservation.Repository = (*ReservationRepository)(nil)

// NewReservationRepository creates a reservation repository
func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, ride_id, passenger_id, status, note, created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, res.ID, res.RideID, res.PassengerID, res.Status, res.Note, res.CreatedAt, res.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.ErrAlreadyReserved
	}
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListByRide(ctx context.Context, rideID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE ride_id = $1 ORDER BY created_at ASC, id ASC`, rideID)
}

func (r *ReservationRepository) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE passenger_id = $1 ORDER BY created_at ASC, id ASC`, passengerID)
}

func (r *ReservationRepository) FindActive(ctx context.Context, rideID, passengerID uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE ride_id = $1 AND passenger_id = $2 AND status IN ($3, $4)
		LIMIT 1
	`, rideID, passengerID, reservation.StatusPending, reservation.StatusAccepted)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) CountByStatus(ctx context.Context, rideID uuid.UUID, status reservation.Status) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations WHERE ride_id = $1 AND status = $2
	`, rideID, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to reservation.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4
	`, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check reservation: %w", err)
	}
	if !exists {
		return apperrors.ErrReservationNotFound
	}
	return apperrors.ErrStaleStatus
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*reservation.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	out := make([]*reservation.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanReservation(s scanner) (*reservation.Reservation, error) {
	var res reservation.Reservation
	err := s.Scan(&res.ID, &res.RideID, &res.PassengerID, &res.Status, &res.Note, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
