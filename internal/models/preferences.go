package models

// UserPreferences holds alert thresholds for one (user, device) pair.
type UserPreferences struct {
	UserID               string  `db:"user_id" json:"user_id"`
	DeviceID             string  `db:"device_id" json:"device_id"`
	TDSThreshold         float64 `db:"tds_threshold" json:"tds_threshold"`
	TemperatureThreshold float64 `db:"temperature_threshold" json:"temperature_threshold"`
	NotificationEnabled  bool    `db:"notification_enabled" json:"notification_enabled"`
}
