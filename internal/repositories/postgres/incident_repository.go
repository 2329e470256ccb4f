package postgres

import (
	"context"
	"errors"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const incidentColumns = `id, incident_type, location, severity, description, status, reported_at, resolved_at, latitude, longitude`

type IncidentRepository struct {
	pool *pgxpool.Pool
}

func NewIncidentRepository(pool *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{pool: pool}
}

func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
        INSERT INTO emergency_incidents (` + incidentColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.pool.Exec(ctx, query,
		incident.ID,
		incident.IncidentType,
		incident.Location,
		incident.Severity,
		incident.Description,
		incident.Status,
		incident.ReportedAt,
		incident.ResolvedAt,
		incident.Latitude,
		incident.Longitude,
	)
	return err
}

func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	query := `
        UPDATE emergency_incidents
        SET incident_type = $2, location = $3, severity = $4, description = $5,
            status = $6, reported_at = $7, resolved_at = $8, latitude = $9, longitude = $10
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query,
		incident.ID,
		incident.IncidentType,
		incident.Location,
		incident.Severity,
		incident.Description,
		incident.Status,
		incident.ReportedAt,
		incident.ResolvedAt,
		incident.Latitude,
		incident.Longitude,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM emergency_incidents WHERE id = $1`

	inc := &models.Incident{}
	err := scanIncident(r.pool.QueryRow(ctx, query, id), inc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inc, nil
}

func (r *IncidentRepository) GetAll(ctx context.Context) ([]*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM emergency_incidents ORDER BY reported_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectIncidents(rows)
}

func (r *IncidentRepository) FindByStatus(ctx context.Context, status string) ([]*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM emergency_incidents WHERE status = $1 ORDER BY reported_at`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	return collectIncidents(rows)
}

func collectIncidents(rows pgx.Rows) ([]*models.Incident, error) {
	defer rows.Close()

	var incidents []*models.Incident
	for rows.Next() {
		inc := &models.Incident{}
		if err := scanIncident(rows, inc); err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

func scanIncident(row pgx.Row, inc *models.Incident) error {
	return row.Scan(
		&inc.ID,
		&inc.IncidentType,
		&inc.Location,
		&inc.Severity,
		&inc.Description,
		&inc.Status,
		&inc.ReportedAt,
		&inc.ResolvedAt,
		&inc.Latitude,
		&inc.Longitude,
	)
}
