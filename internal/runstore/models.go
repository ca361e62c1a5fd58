package runstore

import (
	"errors"
	"time"

	"segmatic/internal/services"
)

// Status describes the terminal state of one file's job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// StatusFor maps a job error to the status the batch should persist.
// Precondition violations are skips rather than failures so corrupt inputs
// do not mask real pipeline problems, and cancellation is not an error.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSucceeded
	case errors.Is(err, services.ErrCancelled):
		return StatusCancelled
	case errors.Is(err, services.ErrValidation):
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// Run is one batch invocation.
type Run struct {
	ID         string
	RootDir    string
	OutputDir  string
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	Cancelled  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// FileResult is one file's outcome within a run.
type FileResult struct {
	SourcePath string
	Status     Status
	Error      string
	Segments   int
	Elapsed    time.Duration
}
