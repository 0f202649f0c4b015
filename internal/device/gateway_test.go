package device

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestGateway(handler http.Handler) (*Gateway, string, func()) {
	server := httptest.NewServer(handler)
	client := NewClient(server.Client(), 200*time.Millisecond, 0, time.Millisecond, zap.NewNop())
	address := strings.TrimPrefix(server.URL, "http://")
	return NewGateway(client, zap.NewNop()), address, server.Close
}

func TestGatewaySensorData(t *testing.T) {
	gateway, address, done := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sensor-data" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"tds": 250, "temperature": 22, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`))
	}))
	defer done()

	reading, err := gateway.SensorData(context.Background(), address)
	if err != nil {
		t.Fatalf("SensorData failed: %v", err)
	}
	if reading.TDS != 250 || reading.Temperature != 22 || reading.Drinkability != "Safe" {
		t.Fatalf("unexpected reading %+v", reading)
	}
}

func TestGatewaySensorDataServerError(t *testing.T) {
	gateway, address, done := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer done()

	_, err := gateway.SensorData(context.Background(), address)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Code != CodeServerError {
		t.Fatalf("code = %q, want %q", apiErr.Code, CodeServerError)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", apiErr.Status)
	}
}

func TestGatewaySensorDataInvalidPayload(t *testing.T) {
	gateway, address, done := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tds": 9999, "temperature": 22, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"}`))
	}))
	defer done()

	_, err := gateway.SensorData(context.Background(), address)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Code != CodeInvalidData {
		t.Fatalf("code = %q, want %q", apiErr.Code, CodeInvalidData)
	}
}

func TestGatewayStatus(t *testing.T) {
	gateway, address, done := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/device-status" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"connected": true, "signal": 87, "lastSeen": "2024-01-01T12:00:00Z"}`))
	}))
	defer done()

	status := gateway.Status(context.Background(), address)
	if !status.Connected || status.Signal != 87 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestGatewayStatusUnreachableNeverFails(t *testing.T) {
	client := NewClient(&http.Client{}, 50*time.Millisecond, 0, time.Millisecond, zap.NewNop())
	gateway := NewGateway(client, zap.NewNop())

	// Reserved TEST-NET address, nothing listens there.
	status := gateway.Status(context.Background(), "192.0.2.1")
	if status.Connected {
		t.Fatal("expected disconnected fallback")
	}
	if status.Signal != 0 {
		t.Fatalf("signal = %d, want 0", status.Signal)
	}
	if status.LastSeen.IsZero() {
		t.Fatal("fallback lastSeen must be populated")
	}
}

func TestGatewayHistoricalDataFiltersInvalid(t *testing.T) {
	gateway, address, done := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/historical-data" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[
			{"tds": 100, "temperature": 20, "timestamp": "2024-01-01T00:00:00Z", "drinkability": "Safe"},
			{"tds": -5, "temperature": 20, "timestamp": "2024-01-01T01:00:00Z", "drinkability": "Safe"},
			{"tds": 320, "temperature": 26, "timestamp": "2024-01-01T02:00:00Z", "drinkability": "Caution"},
			{"tds": 400, "temperature": 20, "timestamp": "nope", "drinkability": "Caution"},
			{"tds": 650, "temperature": 41, "timestamp": "2024-01-01T03:00:00Z", "drinkability": "Unsafe"}
		]`))
	}))
	defer done()

	readings := gateway.HistoricalData(context.Background(), address)
	if len(readings) != 3 {
		t.Fatalf("kept %d readings, want 3", len(readings))
	}
	// Relative order of valid entries is preserved.
	if readings[0].TDS != 100 || readings[1].TDS != 320 || readings[2].TDS != 650 {
		t.Fatalf("order not preserved: %+v", readings)
	}
}

func TestGatewayHistoricalDataFailureYieldsEmpty(t *testing.T) {
	gateway, address, done := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer done()

	readings := gateway.HistoricalData(context.Background(), address)
	if readings == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(readings) != 0 {
		t.Fatalf("got %d readings, want 0", len(readings))
	}
}

func TestGatewayControlOperations(t *testing.T) {
	var gotWiFiBody string
	gateway, address, done := newTestGateway(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wifi-config":
			buf, _ := io.ReadAll(r.Body)
			gotWiFiBody = string(buf)
			w.WriteHeader(http.StatusOK)
		case "/clear-history":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer done()

	if ok := gateway.ConfigureWiFi(context.Background(), address, "home-net", "secret"); !ok {
		t.Fatal("ConfigureWiFi should succeed on 2xx")
	}
	if !strings.Contains(gotWiFiBody, `"ssid":"home-net"`) {
		t.Fatalf("wifi config body = %q", gotWiFiBody)
	}

	if ok := gateway.ClearHistory(context.Background(), address); ok {
		t.Fatal("ClearHistory should report false on non-2xx")
	}
}
