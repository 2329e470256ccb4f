package memory

import (
	"context"
	"sync"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
)

type DeviceRepository struct {
	mu      sync.RWMutex
	devices []models.Device
}

func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{}
}

func (r *DeviceRepository) Create(ctx context.Context, device *models.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices = append(r.devices, *device)
	return nil
}

func (r *DeviceRepository) GetAll(ctx context.Context) ([]*models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Device, len(r.devices))
	for i := range r.devices {
		d := r.devices[i]
		out[i] = &d
	}
	return out, nil
}

// GetByDeviceID returns the most recently registered device with deviceID.
func (r *DeviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.devices) - 1; i >= 0; i-- {
		if r.devices[i].DeviceID == deviceID {
			d := r.devices[i]
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}
