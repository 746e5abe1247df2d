package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// StepError reports which step of which run stopped a workflow.
type StepError struct {
	Workflow string
	RunID    string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s failed: %v", e.Workflow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ProviderFailure is one generator's error inside a FallbackError.
type ProviderFailure struct {
	Provider string
	Err      error
}

// FallbackError is returned when every generator in the chain failed.
type FallbackError struct {
	Failures []ProviderFailure
}

func (e *FallbackError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}

	return "all blog generators failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes every provider error to errors.Is and errors.As.
func (e *FallbackError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return errs
}

// FailedStep returns the failing step name if err came from a workflow run.
func FailedStep(err error) (string, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}

	return "", false
}
