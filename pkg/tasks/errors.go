package tasks

import "errors"

var (
	// ErrAlreadyRunning rejects admission while a qualifying job is in
	// flight. It is a normal negative result, not a fault: callers
	// should retry later.
	ErrAlreadyRunning = errors.New("a job is already running")

	// ErrUnknownJob reports a job identifier absent from the catalog.
	ErrUnknownJob = errors.New("unknown job")
)

// Reasons reported through the submit surface.
const (
	ReasonAlreadyRunning = "AlreadyRunning"
	ReasonUnknownJob     = "UnknownJob"
)
