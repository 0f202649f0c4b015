package repository

import (
	"context"
	"database/sql"
	"errors"

	"aquawatch/internal/models"
)

// ErrPreferencesNotFound indicates no stored preferences for the pair.
var ErrPreferencesNotFound = errors.New("preferences not found")

// PreferencesRepository persists per-(user, device) alert thresholds.
type PreferencesRepository struct {
	db *sql.DB
}

// NewPreferencesRepository returns repository.
func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns stored preferences for one (user, device) pair.
func (r *PreferencesRepository) Get(ctx context.Context, userID, deviceID string) (*models.UserPreferences, error) {
	const query = `
		SELECT user_id, device_id, tds_threshold, temperature_threshold, notification_enabled
		FROM user_preferences
		WHERE user_id = $1 AND device_id = $2
	`
	var p models.UserPreferences
	err := r.db.QueryRowContext(ctx, query, userID, deviceID).Scan(
		&p.UserID,
		&p.DeviceID,
		&p.TDSThreshold,
		&p.TemperatureThreshold,
		&p.NotificationEnabled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert creates or replaces the preferences row, one per (user, device).
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	const query = `
		INSERT INTO user_preferences (user_id, device_id, tds_threshold, temperature_threshold, notification_enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			tds_threshold = EXCLUDED.tds_threshold,
			temperature_threshold = EXCLUDED.temperature_threshold,
			notification_enabled = EXCLUDED.notification_enabled
	`
	_, err := r.db.ExecContext(ctx, query,
		prefs.UserID,
		prefs.DeviceID,
		prefs.TDSThreshold,
		prefs.TemperatureThreshold,
		prefs.NotificationEnabled,
	)
	return err
}
