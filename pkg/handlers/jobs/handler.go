package jobs

import (
	"encoding/json"
	"net/http"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/models/api"
	coretasks "github.com/marketpulse/core/pkg/tasks"
	"github.com/marketpulse/core/pkg/utils"
)

// Handler serves the job catalog
type Handler struct {
	catalog *coretasks.Catalog
	logger  *logger.Logger
}

// NewHandler creates a new jobs handler
func NewHandler(catalog *coretasks.Catalog, log *logger.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		logger:  log,
	}
}

// List handles GET /api/jobs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, api.JobListResponse{
		Success: true,
		Data:    h.catalog.List(),
	})
}

// Lookup handles GET /api/jobs/lookup, resolving a dataset key to the
// job that refreshes it.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	dataset := utils.NormalizeDatasetKey(r.URL.Query().Get("dataset"))
	if dataset == "" {
		writeError(w, http.StatusBadRequest, "dataset is required")
		return
	}

	job, ok := h.catalog.JobForDataset(dataset)
	if !ok {
		writeJSON(w, http.StatusNotFound, api.DatasetLookupResponse{
			Success: false,
			Dataset: dataset,
			Message: "No job refreshes dataset: " + dataset,
		})
		return
	}
	writeJSON(w, http.StatusOK, api.DatasetLookupResponse{
		Success: true,
		Dataset: dataset,
		Job:     &job,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Success: false, Message: message})
}
