package models

import "time"

// Device statuses.
const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
	DeviceStatusError   = "error"
)

// Device is a registered water-quality sensor unit.
type Device struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	IPAddress       string    `db:"ip_address" json:"ip_address"`
	Status          string    `db:"status" json:"status"`
	LastSeen        time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	FirmwareVersion string    `db:"firmware_version" json:"firmware_version,omitempty"`
	SignalStrength  int       `db:"signal_strength" json:"signal_strength,omitempty"`
}
