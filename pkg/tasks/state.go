package tasks

import (
	"time"

	"github.com/marketpulse/core/pkg/progress"
)

// TaskState is a snapshot of one orchestrated job execution. Within a
// lifecycle Running=true always precedes any Running=false observation,
// and EndTime is set exactly when Running has transitioned to false.
type TaskState struct {
	TaskID   string  `json:"task_id"`
	JobID    string  `json:"job_id"`
	Running  bool    `json:"running"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
	// Success stays nil until the execution reaches a terminal state.
	Success        *bool                      `json:"success"`
	StartTime      time.Time                  `json:"start_time"`
	EndTime        *time.Time                 `json:"end_time,omitempty"`
	ProgressDetail map[string]progress.Record `json:"progress_detail,omitempty"`
}

// clone returns a defensive copy safe to hand outside the lock.
func (t TaskState) clone() TaskState {
	out := t
	if t.ProgressDetail != nil {
		out.ProgressDetail = make(map[string]progress.Record, len(t.ProgressDetail))
		for k, v := range t.ProgressDetail {
			out.ProgressDetail[k] = v
		}
	}
	return out
}
