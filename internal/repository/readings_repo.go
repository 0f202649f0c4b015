package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"aquawatch/internal/models"
)

// DefaultReadingsLimit bounds history queries when the caller does not.
const DefaultReadingsLimit = 24

// ReadingsRepository persists sensor readings.
type ReadingsRepository struct {
	db *sql.DB
}

// NewReadingsRepository returns repository.
func NewReadingsRepository(db *sql.DB) *ReadingsRepository {
	return &ReadingsRepository{db: db}
}

// Insert stores a new reading. The row id and recorded_at are assigned here,
// not taken from the device, so the caller gets the authoritative values back.
func (r *ReadingsRepository) Insert(ctx context.Context, reading *models.SensorReading) error {
	const query = `
		INSERT INTO sensor_readings (id, device_id, tds_value, temperature, drinkability, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING recorded_at
	`
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	return r.db.QueryRowContext(ctx, query,
		reading.ID,
		reading.DeviceID,
		reading.TDSValue,
		reading.Temperature,
		reading.Drinkability,
	).Scan(&reading.RecordedAt)
}

// Latest returns up to limit readings for a device, newest first.
func (r *ReadingsRepository) Latest(ctx context.Context, deviceID string, limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = DefaultReadingsLimit
	}
	const query = `
		SELECT id, device_id, tds_value, temperature, drinkability, recorded_at
		FROM sensor_readings
		WHERE device_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.SensorReading
	for rows.Next() {
		var reading models.SensorReading
		if err := rows.Scan(
			&reading.ID,
			&reading.DeviceID,
			&reading.TDSValue,
			&reading.Temperature,
			&reading.Drinkability,
			&reading.RecordedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}
