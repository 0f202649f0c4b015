package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"aquawatch/internal/models"
)

// ErrDeviceNotFound indicates a missing device row.
var ErrDeviceNotFound = errors.New("device not found")

// DevicesRepository handles persistence of registered devices.
type DevicesRepository struct {
	db *sql.DB
}

// NewDevicesRepository returns repository.
func NewDevicesRepository(db *sql.DB) *DevicesRepository {
	return &DevicesRepository{db: db}
}

// Insert registers a new device as online.
func (r *DevicesRepository) Insert(ctx context.Context, device *models.Device) error {
	const query = `
		INSERT INTO devices (id, name, ip_address, status, last_seen, created_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING last_seen, created_at
	`
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	if device.Status == "" {
		device.Status = models.DeviceStatusOnline
	}
	return r.db.QueryRowContext(ctx, query,
		device.ID,
		device.Name,
		device.IPAddress,
		device.Status,
	).Scan(&device.LastSeen, &device.CreatedAt)
}

// UpdateStatus sets device status and bumps last_seen.
func (r *DevicesRepository) UpdateStatus(ctx context.Context, deviceID, status string) error {
	const query = `
		UPDATE devices
		SET status = $2,
		    last_seen = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, deviceID, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// GetByID returns one device.
func (r *DevicesRepository) GetByID(ctx context.Context, deviceID string) (*models.Device, error) {
	const query = `
		SELECT id, name, ip_address, status, last_seen, created_at
		FROM devices
		WHERE id = $1
	`
	var d models.Device
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&d.ID,
		&d.Name,
		&d.IPAddress,
		&d.Status,
		&d.LastSeen,
		&d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all registered devices, oldest first.
func (r *DevicesRepository) List(ctx context.Context) ([]models.Device, error) {
	const query = `
		SELECT id, name, ip_address, status, last_seen, created_at
		FROM devices
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.IPAddress,
			&d.Status,
			&d.LastSeen,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

// Delete removes a device row.
func (r *DevicesRepository) Delete(ctx context.Context, deviceID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, deviceID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}
