package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sampleColumns = `id, location, congestion_level, average_speed, vehicle_count, sampled_at, latitude, longitude`

type TrafficSampleRepository struct {
	pool *pgxpool.Pool
}

func NewTrafficSampleRepository(pool *pgxpool.Pool) *TrafficSampleRepository {
	return &TrafficSampleRepository{pool: pool}
}

func (r *TrafficSampleRepository) Append(ctx context.Context, sample *models.TrafficSample) error {
	query := `
        INSERT INTO traffic_samples (` + sampleColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.pool.Exec(ctx, query,
		sample.ID,
		sample.Location,
		sample.CongestionLevel,
		sample.AverageSpeed,
		sample.VehicleCount,
		sample.Timestamp,
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
        SELECT DISTINCT ON (location) ` + sampleColumns + `
        FROM traffic_samples
        ORDER BY location, sampled_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest traffic samples: %w", err)
	}
	return collectSamples(rows)
}

func (r *TrafficSampleRepository) FindByLocation(ctx context.Context, location string) ([]*models.TrafficSample, error) {
	query := `
        SELECT ` + sampleColumns + `
        FROM traffic_samples
        WHERE location = $1
        ORDER BY sampled_at DESC`

	rows, err := r.pool.Query(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic samples for %s: %w", location, err)
	}
	return collectSamples(rows)
}

func collectSamples(rows pgx.Rows) ([]*models.TrafficSample, error) {
	defer rows.Close()

	var samples []*models.TrafficSample
	for rows.Next() {
		s := &models.TrafficSample{}
		err := rows.Scan(
			&s.ID,
			&s.Location,
			&s.CongestionLevel,
			&s.AverageSpeed,
			&s.VehicleCount,
			&s.Timestamp,
			&s.Latitude,
			&s.Longitude,
		)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
