package httpserver

import (
	"net/http"

	"github.com/rs/cors"

	"aquawatch/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Devices       *handlers.DevicesHandler
	Dashboard     *handlers.DashboardHandler
	History       *handlers.HistoryHandler
	Preferences   *handlers.PreferencesHandler
	DeviceControl *handlers.DeviceControlHandler
	Readings      http.Handler
	Health        http.HandlerFunc
}

// NewRouter wires HTTP routes and CORS for the browser dashboard.
func NewRouter(deps RouterDeps, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, deps.Health))

	mux.Handle("/api/devices", deps.Devices)
	mux.Handle("/api/devices/scan", method(http.MethodPost, http.HandlerFunc(deps.Devices.Scan)))
	mux.Handle("/api/devices/select", method(http.MethodPost, http.HandlerFunc(deps.Devices.Select)))
	mux.Handle("/api/devices/remove", method(http.MethodPost, http.HandlerFunc(deps.Devices.Remove)))
	mux.Handle("/api/devices/status", method(http.MethodGet, http.HandlerFunc(deps.Devices.Status)))
	mux.Handle("/api/devices/history", method(http.MethodGet, deps.History))
	mux.Handle("/api/devices/wifi-config", method(http.MethodPost, http.HandlerFunc(deps.DeviceControl.ConfigureWiFi)))
	mux.Handle("/api/devices/clear-history", method(http.MethodPost, http.HandlerFunc(deps.DeviceControl.ClearHistory)))

	mux.Handle("/api/dashboard", method(http.MethodGet, http.HandlerFunc(deps.Dashboard.Snapshot)))
	mux.Handle("/api/dashboard/refresh", method(http.MethodPost, http.HandlerFunc(deps.Dashboard.Refresh)))

	mux.Handle("/api/preferences", deps.Preferences)

	if deps.Readings != nil {
		mux.Handle("/ws/readings", deps.Readings)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
