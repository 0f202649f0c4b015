package water

import (
	"errors"
	"testing"
)

func TestParseReadingAccepts(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"typical", `{"tds": 250, "temperature": 22.5, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"tds at lower bound", `{"tds": 0, "temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"tds at upper bound", `{"tds": 2000, "temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Unsafe"}`},
		{"temperature at bounds", `{"tds": 100, "temperature": -10, "timestamp": "2024-01-01T00:00:00+02:00", "drinkability": "Safe"}`},
		{"extra fields ignored", `{"tds": 100, "temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe", "battery": 93}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reading, err := ParseReading([]byte(tc.payload))
			if err != nil {
				t.Fatalf("ParseReading(%s) failed: %v", tc.payload, err)
			}
			if reading.Drinkability == "" {
				t.Fatal("drinkability not populated")
			}
		})
	}
}

func TestParseReadingRejects(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `not-json`},
		{"not an object", `[1, 2, 3]`},
		{"null", `null`},
		{"missing tds", `{"temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"missing drinkability", `{"tds": 100, "temperature": 20, "timestamp": "2024-01-01T00:00:00Z"}`},
		{"tds as string", `{"tds": "100", "temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"temperature as bool", `{"tds": 100, "temperature": true, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"tds below range", `{"tds": -1, "temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"tds above range", `{"tds": 2001, "temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"temperature below range", `{"tds": 100, "temperature": -11, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"temperature above range", `{"tds": 100, "temperature": 101, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`},
		{"bad timestamp", `{"tds": 100, "temperature": 20, "timestamp": "not-a-date", "drinkability": "Safe"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReading([]byte(tc.payload))
			if err == nil {
				t.Fatalf("ParseReading(%s) unexpectedly succeeded", tc.payload)
			}
			if !errors.Is(err, ErrInvalidReading) {
				t.Fatalf("error %v does not wrap ErrInvalidReading", err)
			}
		})
	}
}

func TestReadingRecordedAt(t *testing.T) {
	reading := Reading{Timestamp: "2024-06-15T10:30:00Z"}
	ts, err := reading.RecordedAt()
	if err != nil {
		t.Fatalf("RecordedAt failed: %v", err)
	}
	if ts.Hour() != 10 || ts.Minute() != 30 {
		t.Fatalf("unexpected parsed time %v", ts)
	}
}
