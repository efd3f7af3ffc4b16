package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gocomet/carpool/internal/domain/rating"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
)

// RatingRepository implements rating.Repository on PostgreSQL
type RatingRepository struct {
	db *sql.DB
}

var _ rating.Repository = (*RatingRepository)(nil)

// NewRatingRepository creates a rating repository
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

const pendingObligationsQuery = `
	SELECT rd.id, rd.driver_id, $2::text AS role, rd.departure_time
	FROM rides rd
	JOIN reservations res ON res.ride_id = rd.id
	WHERE res.passenger_id = $1 AND res.status = $3 AND rd.status = $4
		AND NOT EXISTS (
			SELECT 1 FROM ratings rt
			WHERE rt.ride_id = rd.id AND rt.rater_id = $1 AND rt.ratee_id = rd.driver_id AND rt.role = $2
		)
	ORDER BY 4 ASC`

func (r *RatingRepository) PendingObligations(ctx context.Context, userID uuid.UUID) ([]rating.Obligation, error) {
	rows, err := r.db.QueryContext(ctx, pendingObligationsQuery,
		userID, rating.RoleDriver, reservation.StatusAccepted, ride.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("query obligations: %w", err)
	}
	defer rows.Close()

	out := make([]rating.Obligation, 0)
	for rows.Next() {
		var o rating.Obligation
		if err := rows.Scan(&o.RideID, &o.CounterpartID, &o.Role, &o.DepartureTime); err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *RatingRepository) Create(ctx context.Context, rt *rating.Rating) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (id, ride_id, rater_id, ratee_id, role, score, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rt.ID, rt.RideID, rt.RaterID, rt.RateeID, rt.Role, rt.Score, rt.Comment, rt.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return rating.ErrAlreadyRated
	}
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func (r *RatingRepository) Exists(ctx context.Context, rideID, raterID, rateeID uuid.UUID, role rating.Role) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ratings WHERE ride_id = $1 AND rater_id = $2 AND ratee_id = $3 AND role = $4
		)
	`, rideID, raterID, rateeID, role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check rating: %w", err)
	}
	return exists, nil
}

func (r *RatingRepository) ListByRatee(ctx context.Context, rateeID uuid.UUID) ([]*rating.Rating, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ride_id, rater_id, ratee_id, role, score, comment, created_at
		FROM ratings WHERE ratee_id = $1 ORDER BY created_at ASC
	`, rateeID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	out := make([]*rating.Rating, 0)
	for rows.Next() {
		var rt rating.Rating
		if err := rows.Scan(&rt.ID, &rt.RideID, &rt.RaterID, &rt.RateeID, &rt.Role, &rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, &rt)
	}
	return out, rows.Err()
}
