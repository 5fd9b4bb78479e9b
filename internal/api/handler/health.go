package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/schoolgate/internal/api/response"
	"github.com/mcoot/schoolgate/internal/services/gate"
	"github.com/mcoot/schoolgate/internal/storage"
)

// HealthHandler reports process and storage health
type HealthHandler struct {
	pinger storage.Pinger
	gate   *gate.Manager
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. pinger may be nil for
// backends with nothing to ping.
func NewHealthHandler(pinger storage.Pinger, gate *gate.Manager, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		pinger: pinger,
		gate:   gate,
		logger: logger,
	}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := response.Health{Status: "ok", Storage: "ok", Windows: h.gate.Count()}
	status := http.StatusOK

	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Warn("storage ping failed", slog.String("error", err.Error()))
			resp.Status = "degraded"
			resp.Storage = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	response.JSON(w, status, resp)
}
