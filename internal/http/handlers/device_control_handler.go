package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"aquawatch/internal/device"
	"aquawatch/internal/repository"
)

// DeviceControlHandler proxies best-effort control operations to a device.
// Both operations report plain success booleans; failures are logged on the
// device gateway, never surfaced as HTTP errors.
type DeviceControlHandler struct {
	devices *repository.DevicesRepository
	gateway *device.Gateway
	logger  *zap.Logger
}

// NewDeviceControlHandler returns handler.
func NewDeviceControlHandler(devices *repository.DevicesRepository, gateway *device.Gateway, logger *zap.Logger) *DeviceControlHandler {
	return &DeviceControlHandler{devices: devices, gateway: gateway, logger: logger}
}

// ConfigureWiFi handles POST /api/devices/wifi-config.
func (h *DeviceControlHandler) ConfigureWiFi(w http.ResponseWriter, r *http.Request) {
	var input struct {
		DeviceID string `json:"device_id"`
		SSID     string `json:"ssid"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if input.DeviceID == "" || input.SSID == "" {
		writeError(w, http.StatusBadRequest, "device_id and ssid are required")
		return
	}

	d, err := h.devices.GetByID(r.Context(), input.DeviceID)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load device", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load device")
		return
	}

	ok := h.gateway.ConfigureWiFi(r.Context(), d.IPAddress, input.SSID, input.Password)
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// ClearHistory handles POST /api/devices/clear-history.
func (h *DeviceControlHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	var input struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if input.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	d, err := h.devices.GetByID(r.Context(), input.DeviceID)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load device", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load device")
		return
	}

	ok := h.gateway.ClearHistory(r.Context(), d.IPAddress)
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}
