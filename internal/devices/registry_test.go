package devices

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndStatus(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(memory.NewDeviceRepository())
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	device, err := reg.Register(ctx, &models.Device{DeviceID: "CAM-001", Location: "Central Square", Status: models.DeviceStatusMaintenance})
	require.NoError(t, err)
	assert.NotEmpty(t, device.ID)
	assert.Equal(t, now, device.LastSeen)

	status, err := reg.Status(ctx, "CAM-001")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusMaintenance, status)
}

func TestRegisterDefaultsStatus(t *testing.T) {
	reg := NewRegistry(memory.NewDeviceRepository())
	device, err := reg.Register(context.Background(), &models.Device{DeviceID: "TS-1"})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusOnline, device.Status)
}

func TestRegisterRequiresDeviceID(t *testing.T) {
	reg := NewRegistry(memory.NewDeviceRepository())
	_, err := reg.Register(context.Background(), &models.Device{Name: "nameless"})
	assert.ErrorIs(t, err, ErrInvalidDevice)
}

func TestStatusUnknownDevice(t *testing.T) {
	reg := NewRegistry(memory.NewDeviceRepository())
	_, err := reg.Status(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestSeedForLocations(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(memory.NewDeviceRepository())

	require.NoError(t, reg.SeedForLocations(ctx, factories.NewDeviceFactory(9), models.DefaultLocations))

	all, err := reg.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(models.DefaultLocations))
	for i, d := range all {
		assert.Equal(t, models.DefaultLocations[i], d.Location)
		assert.False(t, d.LastSeen.IsZero())
	}
}
