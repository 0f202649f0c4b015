package water

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Accepted measurement ranges. TDS is in parts-per-million, temperature in
// degrees Celsius. Values outside these bounds indicate a faulty sensor or a
// corrupted payload and are rejected.
const (
	MinTDS         = 0
	MaxTDS         = 2000
	MinTemperature = -10
	MaxTemperature = 100
)

// ErrInvalidReading marks payloads that fail shape or range validation.
var ErrInvalidReading = errors.New("invalid sensor reading")

// Reading is a raw measurement as reported by a device.
type Reading struct {
	TDS          float64 `json:"tds"`
	Temperature  float64 `json:"temperature"`
	Timestamp    string  `json:"timestamp"`
	Drinkability string  `json:"drinkability"`
}

// wire form with pointers so missing fields are distinguishable from zeroes.
type readingPayload struct {
	TDS          *float64 `json:"tds"`
	Temperature  *float64 `json:"temperature"`
	Timestamp    *string  `json:"timestamp"`
	Drinkability *string  `json:"drinkability"`
}

// ParseReading decodes and validates a device payload. It never panics: any
// malformed, incomplete or out-of-range payload comes back as an error
// wrapping ErrInvalidReading.
func ParseReading(data []byte) (Reading, error) {
	var payload readingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}
	if payload.TDS == nil || payload.Temperature == nil || payload.Timestamp == nil || payload.Drinkability == nil {
		return Reading{}, fmt.Errorf("%w: missing field", ErrInvalidReading)
	}

	reading := Reading{
		TDS:          *payload.TDS,
		Temperature:  *payload.Temperature,
		Timestamp:    *payload.Timestamp,
		Drinkability: *payload.Drinkability,
	}
	if err := reading.Check(); err != nil {
		return Reading{}, err
	}
	return reading, nil
}

// Check validates measurement ranges and the timestamp format.
func (r Reading) Check() error {
	if r.TDS < MinTDS || r.TDS > MaxTDS {
		return fmt.Errorf("%w: tds %v out of range [%d, %d]", ErrInvalidReading, r.TDS, MinTDS, MaxTDS)
	}
	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature %v out of range [%d, %d]", ErrInvalidReading, r.Temperature, MinTemperature, MaxTemperature)
	}
	if _, err := r.RecordedAt(); err != nil {
		return fmt.Errorf("%w: bad timestamp %q", ErrInvalidReading, r.Timestamp)
	}
	return nil
}

// RecordedAt parses the reading timestamp.
func (r Reading) RecordedAt() (time.Time, error) {
	return time.Parse(time.RFC3339, r.Timestamp)
}
