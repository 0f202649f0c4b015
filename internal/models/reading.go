package models

import "time"

// SensorReading is a persisted water-quality measurement. Rows are immutable:
// newer readings supersede older ones, nothing is updated in place.
type SensorReading struct {
	ID           string    `db:"id" json:"id"`
	DeviceID     string    `db:"device_id" json:"device_id"`
	TDSValue     float64   `db:"tds_value" json:"tds_value"`
	Temperature  float64   `db:"temperature" json:"temperature"`
	Drinkability string    `db:"drinkability" json:"drinkability"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
}
