package update

import (
	"encoding/json"
	"net/http"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/models/api"
	coretasks "github.com/marketpulse/core/pkg/tasks"
)

// Handler handles the whole-dataset refresh surface. Submissions go
// through the single global slot, so at most one refresh runs at a time
// and each new run overwrites the previous slot state.
type Handler struct {
	orchestrator *coretasks.Orchestrator
	jobID        string
	logger       *logger.Logger
}

// NewHandler creates a new update handler. jobID names the catalog job
// every submission triggers.
func NewHandler(orchestrator *coretasks.Orchestrator, jobID string, log *logger.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		jobID:        jobID,
		logger:       log,
	}
}

// Submit handles POST /api/update
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	result := h.orchestrator.SubmitGlobal(h.jobID)
	if !result.Accepted {
		if result.Reason == coretasks.ReasonAlreadyRunning {
			writeJSON(w, http.StatusConflict, api.SubmitResponse{
				Success: false,
				Message: "An update is already running",
				Reason:  result.Reason,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, api.SubmitResponse{
			Success: false,
			Message: "Update job is not configured",
			Reason:  result.Reason,
		})
		return
	}

	h.logger.Info().
		Str("action", "update_submitted").
		Str("job_id", h.jobID).
		Str("task_id", result.TaskID).
		Msg("Update submitted")

	writeJSON(w, http.StatusOK, api.SubmitResponse{
		Success: true,
		Message: "Update started",
		TaskID:  result.TaskID,
	})
}

// Status handles GET /api/update/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	state := h.orchestrator.GlobalStatus()
	if state.TaskID == "" {
		writeJSON(w, http.StatusOK, api.StatusResponse{
			Success: true,
			Message: "No update has been run",
		})
		return
	}
	writeJSON(w, http.StatusOK, api.StatusResponse{
		Success: true,
		Data:    &state,
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
