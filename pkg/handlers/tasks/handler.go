package tasks

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/models/api"
	coretasks "github.com/marketpulse/core/pkg/tasks"
)

// Handler handles named-task submission and status requests
type Handler struct {
	orchestrator *coretasks.Orchestrator
	logger       *logger.Logger
}

// NewHandler creates a new tasks handler
func NewHandler(orchestrator *coretasks.Orchestrator, log *logger.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		logger:       log,
	}
}

type submitRequest struct {
	JobID string `json:"job_id"`
}

// Submit handles POST /api/tasks
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.JobID == "" {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	start := time.Now()
	result := h.orchestrator.Submit(req.JobID)
	if !result.Accepted {
		status := http.StatusConflict
		message := "A task is already running"
		if result.Reason == coretasks.ReasonUnknownJob {
			status = http.StatusNotFound
			message = "Unknown job: " + req.JobID
		}
		writeJSON(w, status, api.SubmitResponse{
			Success: false,
			Message: message,
			Reason:  result.Reason,
		})
		return
	}

	h.logger.Info().
		Str("action", "task_submitted").
		Str("job_id", req.JobID).
		Str("task_id", result.TaskID).
		Dur("duration", time.Since(start)).
		Msg("Task submitted")

	writeJSON(w, http.StatusOK, api.SubmitResponse{
		Success: true,
		Message: "Task submitted",
		TaskID:  result.TaskID,
	})
}

// Status handles GET /api/tasks/status. With a task_id query parameter
// it returns that task; without one it lists the active tasks.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	taskID := r.URL.Query().Get("task_id")
	if taskID == "" {
		active := h.orchestrator.ActiveTasks()
		writeJSON(w, http.StatusOK, api.ActiveTasksResponse{
			Success:        true,
			HasActiveTasks: len(active) > 0,
			ActiveTasks:    active,
		})
		return
	}

	state, ok := h.orchestrator.Status(taskID)
	if !ok {
		writeJSON(w, http.StatusNotFound, api.StatusResponse{
			Success: false,
			Message: "Unknown task: " + taskID,
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
