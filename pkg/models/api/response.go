package api

import (
	"time"

	"github.com/marketpulse/core/pkg/tasks"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// SubmitResponse is returned by the task-submission endpoints.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskID  string `json:"task_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// StatusResponse wraps a task-state snapshot.
type StatusResponse struct {
	Success bool             `json:"success"`
	Data    *tasks.TaskState `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
}

// ActiveTasksResponse lists currently running tasks.
type ActiveTasksResponse struct {
	Success        bool              `json:"success"`
	HasActiveTasks bool              `json:"has_active_tasks"`
	ActiveTasks    []tasks.TaskState `json:"active_tasks,omitempty"`
}

// JobListResponse lists catalog jobs.
type JobListResponse struct {
	Success bool        `json:"success"`
	Data    []tasks.Job `json:"data"`
}

// DatasetLookupResponse resolves a dataset key to the job that
// refreshes it.
type DatasetLookupResponse struct {
	Success bool       `json:"success"`
	Dataset string     `json:"dataset"`
	Job     *tasks.Job `json:"job,omitempty"`
	Message string     `json:"message,omitempty"`
}

// SettingsResponse wraps a settings document or section.
type SettingsResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
