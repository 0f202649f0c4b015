package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"aquawatch/internal/service"
)

// DashboardHandler exposes the monitor snapshot and manual refresh.
type DashboardHandler struct {
	monitor *service.Monitor
	logger  *zap.Logger
}

// NewDashboardHandler returns handler.
func NewDashboardHandler(monitor *service.Monitor, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{monitor: monitor, logger: logger}
}

// Snapshot handles GET /api/dashboard. The snapshot always carries an
// explicit state, so the dashboard can distinguish idle, loading, error and
// populated without guessing.
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}

// Refresh handles POST /api/dashboard/refresh.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap := h.monitor.Refresh(r.Context())
	if snap.State == service.StateIdle {
		writeError(w, http.StatusConflict, "no device selected")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
