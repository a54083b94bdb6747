package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/models/api"
	"github.com/marketpulse/core/pkg/progress"
)

// Handler handles health check requests
type Handler struct {
	store  *progress.Store
	logger *logger.Logger
}

// NewHandler creates a new health handler
func NewHandler(store *progress.Store, log *logger.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: log,
	}
}

// HealthCheck handles the /health endpoint. The progress store is the
// only state this service depends on, so its reachability decides
// between ok and degraded.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	response := api.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    map[string]string{"progress_store": "ok"},
	}
	if err := h.store.Ping(); err != nil {
		response.Status = "degraded"
		response.Checks["progress_store"] = err.Error()
		h.logger.Warn().
			Err(err).
			Str("action", "health_store_unreachable").
			Msg("Progress store is not readable")
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "health_check_failed").
			Str("endpoint", "/health").
			Msg("Failed to encode health response")
		return
	}

	h.logger.Debug().
		Str("action", "health_check").
		Str("endpoint", "/health").
		Str("method", r.Method).
		Str("remote_addr", r.RemoteAddr).
		Int("status_code", status).
		Dur("duration", time.Since(start)).
		Msg("Health check completed")
}
