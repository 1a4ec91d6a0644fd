package mcphttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/beaconlabs/beacon-mcp/internal/usecase"
)

// upstreamPingTimeout bounds the health probe's round trip to the platform.
const upstreamPingTimeout = 5 * time.Second

// Handlers struct holds dependencies for the admin HTTP handlers served
// beside the SSE transport.
type Handlers struct {
	client usecase.AnalyticsClient
	logger *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(client usecase.AnalyticsClient, logger *slog.Logger) *Handlers {
	return &Handlers{
		client: client,
		logger: logger.With("component", "mcphttp_handler"),
	}
}

// RegisterAdminRoutes sets up the HTTP routes for admin endpoints.
func (h *Handlers) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

type healthResponse struct {
	Status   string `json:"status"`
	Datasets int    `json:"datasets,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleHealth implements GET /healthz. It pings the upstream by listing
// datasets, so a bad token or unreachable platform shows up here instead of
// on the first tool call.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), upstreamPingTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	datasets, err := h.client.Datasets(ctx)
	if err != nil {
		h.logger.Warn("Health probe failed to reach upstream", slog.Any("error", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(healthResponse{Status: "unavailable", Error: err.Error()})
		return
	}

	json.NewEncoder(w).Encode(healthResponse{Status: "ok", Datasets: len(datasets)})
}
