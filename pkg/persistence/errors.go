package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrRunNotFound indicates a run was not found by the given identifier.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidRun indicates a run cannot be stored, e.g. it has no ID.
	ErrInvalidRun = errors.New("invalid run")
)

// RunError wraps run-related errors with additional context.
type RunError struct {
	Op    string // Operation being performed (e.g., "RunByID", "SaveRun")
	RunID string // Run ID if applicable
	Err   error  // Underlying error
}

func (e *RunError) Error() string {
	if e.RunID == "" {
		return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s operation failed for run %s: %v", e.Op, e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError creates a new run error with context.
func NewRunError(op, runID string, err error) *RunError {
	return &RunError{
		Op:    op,
		RunID: runID,
		Err:   err,
	}
}

// IsRunNotFound checks if an error indicates a run was not found.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}

// ValidateRun checks the fields every store relies on.
func ValidateRun(run *Run) error {
	switch {
	case run == nil:
		return NewRunError("SaveRun", "", fmt.Errorf("%w: nil run", ErrInvalidRun))
	case run.ID == "":
		return NewRunError("SaveRun", "", fmt.Errorf("%w: missing id", ErrInvalidRun))
	case run.Report == nil:
		return NewRunError("SaveRun", run.ID, fmt.Errorf("%w: missing report", ErrInvalidRun))
	}

	return nil
}
