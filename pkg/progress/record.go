package progress

import (
	"math"
	"time"
)

// Record is the latest reported state of one named sub-task.
// Records are replaced wholesale on every update; readers never see a
// partially mutated record.
type Record struct {
	Current   int64     `json:"current"`
	Total     *int64    `json:"total"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	// Percent is derived from Current/Total when the total is known,
	// absent otherwise.
	Percent *float64 `json:"progress,omitempty"`
	Success *bool    `json:"success,omitempty"`
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percentOf computes the completion percentage for a known total,
// or nil when the total is unknown or zero.
func percentOf(current int64, total *int64) *float64 {
	if total == nil || *total <= 0 {
		return nil
	}
	p := round2(float64(current) / float64(*total) * 100)
	return &p
}
