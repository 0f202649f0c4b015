package device

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"aquawatch/internal/water"
)

// Device API endpoints, served by the sensor firmware at http://<ip>.
const (
	pathSensorData     = "/sensor-data"
	pathDeviceStatus   = "/device-status"
	pathWiFiConfig     = "/wifi-config"
	pathClearHistory   = "/clear-history"
	pathHistoricalData = "/historical-data"
)

// Status is the ephemeral per-request device connectivity report. It is never
// persisted.
type Status struct {
	Connected bool      `json:"connected"`
	Signal    int       `json:"signal"`
	LastSeen  time.Time `json:"last_seen"`
}

// Gateway exposes typed operations of a device's local HTTP API. Sensor data
// hard-fails because it drives safety-relevant display; status, WiFi config
// and history clearing are advisory and degrade to safe defaults instead.
type Gateway struct {
	client *Client
	logger *zap.Logger
}

// NewGateway builds a device gateway on top of the resilient client.
func NewGateway(client *Client, logger *zap.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

func baseURL(address string) string {
	return "http://" + address
}

// SensorData fetches the current reading. Fails with SERVER_ERROR on non-2xx,
// INVALID_DATA on a payload that does not validate, and the client's
// NETWORK_ERROR/TIMEOUT_ERROR taxonomy otherwise.
func (g *Gateway) SensorData(ctx context.Context, address string) (water.Reading, error) {
	status, body, err := g.client.Do(ctx, http.MethodGet, baseURL(address)+pathSensorData, nil)
	if err != nil {
		return water.Reading{}, err
	}
	if status < 200 || status > 299 {
		return water.Reading{}, newAPIError(CodeServerError, "failed to fetch sensor data", status, nil)
	}

	reading, err := water.ParseReading(body)
	if err != nil {
		return water.Reading{}, newAPIError(CodeInvalidData, "invalid sensor data format", status, err)
	}
	return reading, nil
}

// Status reports device connectivity. It never fails: any error degrades to a
// disconnected default, logged for diagnosis.
func (g *Gateway) Status(ctx context.Context, address string) Status {
	fallback := Status{Connected: false, Signal: 0, LastSeen: time.Now().UTC()}

	status, body, err := g.client.Do(ctx, http.MethodGet, baseURL(address)+pathDeviceStatus, nil)
	if err != nil {
		g.logger.Warn("device status unavailable", zap.String("address", address), zap.Error(err))
		return fallback
	}
	if status < 200 || status > 299 {
		g.logger.Warn("device status request rejected", zap.String("address", address), zap.Int("status", status))
		return fallback
	}

	var payload struct {
		Connected bool   `json:"connected"`
		Signal    int    `json:"signal"`
		LastSeen  string `json:"lastSeen"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		g.logger.Warn("device status payload malformed", zap.String("address", address), zap.Error(err))
		return fallback
	}

	lastSeen := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339, payload.LastSeen); err == nil {
		lastSeen = ts
	}
	return Status{Connected: payload.Connected, Signal: payload.Signal, LastSeen: lastSeen}
}

// ConfigureWiFi pushes new WiFi credentials to the device. Best effort: true
// on 2xx, false on any failure. The device may apply the config and drop the
// connection before responding, so a retried attempt can double-apply.
func (g *Gateway) ConfigureWiFi(ctx context.Context, address, ssid, password string) bool {
	body, err := json.Marshal(map[string]string{"ssid": ssid, "password": password})
	if err != nil {
		g.logger.Error("marshal wifi config", zap.Error(err))
		return false
	}

	status, _, err := g.client.Do(ctx, http.MethodPost, baseURL(address)+pathWiFiConfig, body)
	if err != nil {
		g.logger.Warn("wifi config failed", zap.String("address", address), zap.Error(err))
		return false
	}
	if status < 200 || status > 299 {
		g.logger.Warn("wifi config rejected", zap.String("address", address), zap.Int("status", status))
		return false
	}
	return true
}

// ClearHistory wipes on-device history. Best effort, same contract as
// ConfigureWiFi.
func (g *Gateway) ClearHistory(ctx context.Context, address string) bool {
	status, _, err := g.client.Do(ctx, http.MethodPost, baseURL(address)+pathClearHistory, nil)
	if err != nil {
		g.logger.Warn("clear history failed", zap.String("address", address), zap.Error(err))
		return false
	}
	if status < 200 || status > 299 {
		g.logger.Warn("clear history rejected", zap.String("address", address), zap.Int("status", status))
		return false
	}
	return true
}

// HistoricalData fetches the on-device history, dropping entries that fail
// validation while preserving the relative order of the rest. Any failure
// yields an empty slice rather than an error.
func (g *Gateway) HistoricalData(ctx context.Context, address string) []water.Reading {
	status, body, err := g.client.Do(ctx, http.MethodGet, baseURL(address)+pathHistoricalData, nil)
	if err != nil {
		g.logger.Warn("historical data unavailable", zap.String("address", address), zap.Error(err))
		return []water.Reading{}
	}
	if status < 200 || status > 299 {
		g.logger.Warn("historical data request rejected", zap.String("address", address), zap.Int("status", status))
		return []water.Reading{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		g.logger.Warn("historical data payload malformed", zap.String("address", address), zap.Error(err))
		return []water.Reading{}
	}

	readings := make([]water.Reading, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		reading, err := water.ParseReading(entry)
		if err != nil {
			dropped++
			continue
		}
		readings = append(readings, reading)
	}
	if dropped > 0 {
		g.logger.Info("dropped invalid historical entries",
			zap.String("address", address),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(readings)),
		)
	}
	return readings
}
