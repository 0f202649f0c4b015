package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"aquawatch/internal/models"
	"aquawatch/internal/repository"
	"aquawatch/internal/water"
)

// PreferencesHandler serves alert preferences for a (user, device) pair.
type PreferencesHandler struct {
	prefs  *repository.PreferencesRepository
	logger *zap.Logger
}

// NewPreferencesHandler returns handler.
func NewPreferencesHandler(prefs *repository.PreferencesRepository, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs, logger: logger}
}

// ServeHTTP handles GET and PUT on /api/preferences.
func (h *PreferencesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *PreferencesHandler) get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	deviceID := r.URL.Query().Get("device_id")
	if userID == "" || deviceID == "" {
		writeError(w, http.StatusBadRequest, "user_id and device_id are required")
		return
	}

	prefs, err := h.prefs.Get(r.Context(), userID, deviceID)
	if errors.Is(err, repository.ErrPreferencesNotFound) {
		writeError(w, http.StatusNotFound, "preferences not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch preferences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *PreferencesHandler) put(w http.ResponseWriter, r *http.Request) {
	var input models.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if input.UserID == "" || input.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "user_id and device_id are required")
		return
	}
	if input.TDSThreshold < water.MinTDS || input.TDSThreshold > water.MaxTDS {
		writeError(w, http.StatusBadRequest, "tds_threshold out of range")
		return
	}
	if input.TemperatureThreshold < water.MinTemperature || input.TemperatureThreshold > water.MaxTemperature {
		writeError(w, http.StatusBadRequest, "temperature_threshold out of range")
		return
	}

	if err := h.prefs.Upsert(r.Context(), &input); err != nil {
		h.logger.Error("failed to save preferences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, input)
}
