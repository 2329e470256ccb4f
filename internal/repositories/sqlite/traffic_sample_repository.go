// Package sqlite provides the embedded traffic sample store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const sampleColumns = `id, location, congestion_level, average_speed, vehicle_count, sampled_at, latitude, longitude`

// TrafficSampleRepository stores samples in a single SQLite file. Timestamps
// are kept as unix nanoseconds so ordering does not depend on time zones.
type TrafficSampleRepository struct {
	db     *sql.DB
	DBPath string
}

// NewTrafficSampleRepository opens (or creates) the database at dbPath.
func NewTrafficSampleRepository(dbPath string) (*TrafficSampleRepository, error) {
	if dbPath == "" {
		dbPath = filepath.Join("data", "traffic.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS traffic_samples (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		congestion_level INTEGER NOT NULL,
		average_speed REAL NOT NULL,
		vehicle_count INTEGER NOT NULL,
		sampled_at INTEGER NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_location_time ON traffic_samples(location, sampled_at);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &TrafficSampleRepository{db: db, DBPath: dbPath}, nil
}

func (r *TrafficSampleRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *TrafficSampleRepository) Append(ctx context.Context, sample *models.TrafficSample) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO traffic_samples(`+sampleColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		sample.ID,
		sample.Location,
		sample.CongestionLevel,
		sample.AverageSpeed,
		sample.VehicleCount,
		sample.Timestamp.UnixNano(),
		sample.Latitude,
		sample.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert traffic sample for %s: %w", sample.Location, err)
	}
	return nil
}

func (r *TrafficSampleRepository) FindLatestPerLocation(ctx context.Context) ([]*models.TrafficSample, error) {
	query := `
		SELECT ` + sampleColumns + ` FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY location ORDER BY sampled_at DESC) AS rn
			FROM traffic_samples
		)
		WHERE rn = 1
		ORDER BY location`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest traffic samples: %w", err)
	}
	return collectSamples(rows)
}

func (r *TrafficSampleRepository) FindByLocation(ctx context.Context, location string) ([]*models.TrafficSample, error) {
	query := `
		SELECT ` + sampleColumns + `
		FROM traffic_samples
		WHERE location = ?
		ORDER BY sampled_at DESC`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic samples for %s: %w", location, err)
	}
	return collectSamples(rows)
}

func collectSamples(rows *sql.Rows) ([]*models.TrafficSample, error) {
	defer rows.Close()

	var samples []*models.TrafficSample
	for rows.Next() {
		var sampledAt int64
		s := &models.TrafficSample{}
		err := rows.Scan(
			&s.ID,
			&s.Location,
			&s.CongestionLevel,
			&s.AverageSpeed,
			&s.VehicleCount,
			&sampledAt,
			&s.Latitude,
			&s.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan traffic sample: %w", err)
		}
		s.Timestamp = time.Unix(0, sampledAt).UTC()
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
