package repositories

import (
	"context"
	"errors"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// TrafficSampleRepository is the append-only store for traffic samples.
// Implementations must accept concurrent Append calls.
type TrafficSampleRepository interface {
	Append(ctx context.Context, sample *models.TrafficSample) error
	// FindLatestPerLocation returns the most recent sample of every location
	// that has at least one.
	FindLatestPerLocation(ctx context.Context) ([]*models.TrafficSample, error)
	FindByLocation(ctx context.Context, location string) ([]*models.TrafficSample, error)
}

type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetAll(ctx context.Context) ([]*models.Device, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
}

// IncidentRepository stores emergency incidents. Update replaces the incident
// with the same ID and returns ErrNotFound when there is none.
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	Update(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	GetAll(ctx context.Context) ([]*models.Incident, error)
	FindByStatus(ctx context.Context, status string) ([]*models.Incident, error)
}
