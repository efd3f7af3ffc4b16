package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creates the booking tables. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS cars (
	id         UUID PRIMARY KEY,
	owner_id   UUID NOT NULL,
	make       TEXT NOT NULL,
	model      TEXT NOT NULL DEFAULT '',
	color      TEXT NOT NULL DEFAULT '',
	plate      TEXT NOT NULL DEFAULT '',
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS rides (
	id             UUID PRIMARY KEY,
	driver_id      UUID NOT NULL,
	car_id         UUID,
	origin         VARCHAR(15) NOT NULL,
	destination    VARCHAR(15) NOT NULL,
	stops          TEXT[] NOT NULL DEFAULT '{}',
	departure_time TIMESTAMPTZ NOT NULL,
	arrival_time   TIMESTAMPTZ NOT NULL,
	price          NUMERIC(10,2) NOT NULL CHECK (price >= 0),
	total_seats    INT NOT NULL CHECK (total_seats >= 1),
	status         TEXT NOT NULL DEFAULT 'active',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (departure_time < arrival_time)
);
CREATE INDEX IF NOT EXISTS idx_rides_status_departure ON rides (status, departure_time);
CREATE INDEX IF NOT EXISTS idx_rides_driver ON rides (driver_id);

CREATE TABLE IF NOT EXISTS reservations (
	id           UUID PRIMARY KEY,
	ride_id      UUID NOT NULL REFERENCES rides(id),
	passenger_id UUID NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	note         TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reservations_ride ON reservations (ride_id, status);
CREATE INDEX IF NOT EXISTS idx_reservations_passenger ON reservations (passenger_id);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_reservations_active
	ON reservations (ride_id, passenger_id) WHERE status IN ('pending', 'accepted');

CREATE TABLE IF NOT EXISTS ratings (
	id         UUID PRIMARY KEY,
	ride_id    UUID NOT NULL REFERENCES rides(id),
	rater_id   UUID NOT NULL,
	ratee_id   UUID NOT NULL,
	role       TEXT NOT NULL,
	score      INT NOT NULL CHECK (score BETWEEN 1 AND 5),
	comment    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (ride_id, rater_id, ratee_id, role)
);
`

// Migrate applies Schema
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
