package tasks

import (
	"sync"
	"time"

	"github.com/marketpulse/core/pkg/progress"
)

// Slot is the single-slot task table behind the coarse "one big update
// at a time" surface. Each admitted submission overwrites the slot in
// place; only the latest execution is observable.
type Slot struct {
	mu    sync.Mutex
	state TaskState
}

func NewSlot() *Slot {
	return &Slot{}
}

// Admit reserves the slot for jobID, or returns ErrAlreadyRunning when
// the current occupant is still running.
func (s *Slot) Admit(jobID, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Running {
		return "", ErrAlreadyRunning
	}

	now := time.Now()
	taskID := jobID + "_" + now.Format("20060102150405")
	s.state = TaskState{
		TaskID:    taskID,
		JobID:     jobID,
		Running:   true,
		Message:   message,
		StartTime: now,
	}
	return taskID, nil
}

// Snapshot returns the current slot state.
func (s *Slot) Snapshot() TaskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SetMessage updates the human-readable status of the occupant.
func (s *Slot) SetMessage(taskID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.TaskID == taskID {
		s.state.Message = message
	}
}

// Finalize transitions the occupant to its terminal state. A stale task
// ID (already overwritten by a newer admission) is ignored.
func (s *Slot) Finalize(taskID string, success bool, message string, prog float64, detail map[string]progress.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.TaskID != taskID {
		return
	}
	now := time.Now()
	s.state.Running = false
	s.state.Success = &success
	s.state.Message = message
	s.state.Progress = prog
	s.state.ProgressDetail = detail
	s.state.EndTime = &now
}
