package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition indicates a lifecycle method was called in a state that does not allow it.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStepFailed indicates a workflow was asked to complete while holding a failed step.
	ErrStepFailed = errors.New("workflow has a failed step")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	Subject string // "workflow" or "step"
	Name    string
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %q: cannot move from %s to %s", e.Subject, e.Name, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsInvalidTransition checks if an error is a rejected status change.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
