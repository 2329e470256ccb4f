package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS traffic_samples (
    id               TEXT PRIMARY KEY,
    location         TEXT NOT NULL,
    congestion_level INTEGER NOT NULL,
    average_speed    DOUBLE PRECISION NOT NULL,
    vehicle_count    INTEGER NOT NULL,
    sampled_at       TIMESTAMPTZ NOT NULL,
    latitude         DOUBLE PRECISION NOT NULL,
    longitude        DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_traffic_samples_location_time
    ON traffic_samples (location, sampled_at DESC);

CREATE TABLE IF NOT EXISTS devices (
    id           TEXT PRIMARY KEY,
    device_id    TEXT NOT NULL,
    name         TEXT NOT NULL,
    type         TEXT NOT NULL,
    location     TEXT NOT NULL,
    manufacturer TEXT NOT NULL,
    status       TEXT NOT NULL,
    last_seen    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_devices_device_id ON devices (device_id);

CREATE TABLE IF NOT EXISTS emergency_incidents (
    id            TEXT PRIMARY KEY,
    incident_type TEXT NOT NULL,
    location      TEXT NOT NULL,
    severity      INTEGER NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL,
    reported_at   TIMESTAMPTZ NOT NULL,
    resolved_at   TIMESTAMPTZ,
    latitude      DOUBLE PRECISION,
    longitude     DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_emergency_incidents_status ON emergency_incidents (status);
`

// Connect opens a pool against databaseURL and makes sure the schema exists.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return pool, nil
}
