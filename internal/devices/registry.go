// Package devices is the registry of IoT devices installed at monitored
// locations.
package devices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/lucsky/cuid"
	"go.uber.org/multierr"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrInvalidDevice  = errors.New("invalid device")
)

type Registry struct {
	repo repositories.DeviceRepository
	now  func() time.Time
}

func NewRegistry(repo repositories.DeviceRepository) *Registry {
	return &Registry{repo: repo, now: time.Now}
}

func (r *Registry) All(ctx context.Context) ([]*models.Device, error) {
	return r.repo.GetAll(ctx)
}

// Status returns the status of the device with deviceID, or ErrDeviceNotFound.
func (r *Registry) Status(ctx context.Context, deviceID string) (string, error) {
	device, err := r.repo.GetByDeviceID(ctx, deviceID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	if err != nil {
		return "", err
	}
	return device.Status, nil
}

// Register stores device, stamping LastSeen and filling in the ID and status
// when they are missing.
func (r *Registry) Register(ctx context.Context, device *models.Device) (*models.Device, error) {
	if strings.TrimSpace(device.DeviceID) == "" {
		return nil, fmt.Errorf("%w: device_id is required", ErrInvalidDevice)
	}
	if device.ID == "" {
		device.ID = cuid.New()
	}
	if device.Status == "" {
		device.Status = models.DeviceStatusOnline
	}
	device.LastSeen = r.now()

	if err := r.repo.Create(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to register device %s: %w", device.DeviceID, err)
	}
	return device, nil
}

// SeedForLocations registers one fixture sensor per location.
func (r *Registry) SeedForLocations(ctx context.Context, factory *factories.DeviceFactory, locations []string) error {
	var errs error
	for _, location := range locations {
		_, err := r.Register(ctx, factory.CreateDevice(location))
		errs = multierr.Append(errs, err)
	}
	return errs
}
