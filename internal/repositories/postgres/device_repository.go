package postgres

import (
	"context"
	"errors"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeviceRepository struct {
	pool *pgxpool.Pool
}

func NewDeviceRepository(pool *pgxpool.Pool) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

func (r *DeviceRepository) Create(ctx context.Context, device *models.Device) error {
	query := `
        INSERT INTO devices (
            id, device_id, name, type, location, manufacturer, status, last_seen
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.pool.Exec(ctx, query,
		device.ID,
		device.DeviceID,
		device.Name,
		device.Type,
		device.Location,
		device.Manufacturer,
		device.Status,
		device.LastSeen,
	)
	return err
}

func (r *DeviceRepository) GetAll(ctx context.Context) ([]*models.Device, error) {
	query := `
        SELECT id, device_id, name, type, location, manufacturer, status, last_seen
        FROM devices
        ORDER BY last_seen`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		d := &models.Device{}
		if err := scanDevice(rows, d); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	query := `
        SELECT id, device_id, name, type, location, manufacturer, status, last_seen
        FROM devices
        WHERE device_id = $1
        ORDER BY last_seen DESC
        LIMIT 1`

	d := &models.Device{}
	err := scanDevice(r.pool.QueryRow(ctx, query, deviceID), d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func scanDevice(row pgx.Row, d *models.Device) error {
	return row.Scan(
		&d.ID,
		&d.DeviceID,
		&d.Name,
		&d.Type,
		&d.Location,
		&d.Manufacturer,
		&d.Status,
		&d.LastSeen,
	)
}
