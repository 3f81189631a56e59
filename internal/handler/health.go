package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the service info and liveness endpoints
type HealthHandler struct {
	store   Pinger
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

// RegisterRoutes registers the root and health routes on the mux
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Info)
	mux.HandleFunc("GET /health", h.Health)
}

// Info handles GET / - service info
func (h *HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"service": "assessment",
		"version": h.version,
		"status":  "running",
	})
}

// Health handles GET /health - liveness plus a store ping
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{
		"status":    "ok",
		"store":     "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["store"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	WriteJSON(w, status, body)
}
