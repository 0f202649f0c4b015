package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"aquawatch/internal/models"
	"aquawatch/internal/repository"
	"aquawatch/internal/service"
)

// DevicesHandler serves the device registry endpoints.
type DevicesHandler struct {
	devices *service.DeviceService
	logger  *zap.Logger
}

// NewDevicesHandler returns handler.
func NewDevicesHandler(devices *service.DeviceService, logger *zap.Logger) *DevicesHandler {
	return &DevicesHandler{devices: devices, logger: logger}
}

// ServeHTTP handles GET (list) and POST (register) on /api/devices.
func (h *DevicesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.register(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DevicesHandler) list(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list devices", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch devices")
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DevicesHandler) register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string `json:"name"`
		IPAddress string `json:"ip_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	input.IPAddress = strings.TrimSpace(input.IPAddress)
	if input.Name == "" || input.IPAddress == "" {
		writeError(w, http.StatusBadRequest, "name and ip_address are required")
		return
	}

	device, err := h.devices.Register(r.Context(), input.Name, input.IPAddress)
	if err != nil {
		h.logger.Error("failed to register device", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add device")
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// Scan handles POST /api/devices/scan.
func (h *DevicesHandler) Scan(w http.ResponseWriter, r *http.Request) {
	device, err := h.devices.Scan(r.Context())
	if err != nil {
		h.logger.Error("device scan failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to scan for devices")
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// Select handles POST /api/devices/select.
func (h *DevicesHandler) Select(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID   string `json:"user_id"`
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if input.UserID == "" || input.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "user_id and device_id are required")
		return
	}

	device, err := h.devices.Select(r.Context(), input.UserID, input.DeviceID)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to select device", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to select device")
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// Remove handles POST /api/devices/remove.
func (h *DevicesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID   string `json:"user_id"`
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

	err := h.devices.Remove(r.Context(), input.UserID, input.DeviceID)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to remove device", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to remove device")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Status handles GET /api/devices/status?device_id=.
func (h *DevicesHandler) Status(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	status, err := h.devices.RefreshStatus(r.Context(), deviceID)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to refresh device status", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to refresh device status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
