package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"aquawatch/internal/models"
	"aquawatch/internal/repository"
	"aquawatch/internal/service"
)

// HistoryHandler serves historical readings for the trend screen.
type HistoryHandler struct {
	history *service.HistoryService
	logger  *zap.Logger
}

// NewHistoryHandler returns handler.
func NewHistoryHandler(history *service.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// ServeHTTP handles GET /api/devices/history?device_id=&limit=.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	readings, err := h.history.Readings(r.Context(), deviceID, limit)
	if errors.Is(err, repository.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch historical data", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch historical data")
		return
	}
	if readings == nil {
		readings = []models.SensorReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}
