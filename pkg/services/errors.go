// Package services provides the run operations shared by the CLI, the HTTP API
// and the scheduler.
package services

import (
	"errors"
	"fmt"

	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidWorkflow = errors.New("invalid workflow name")
	ErrInvalidStatus   = errors.New("invalid run status")
	ErrInvalidLimit    = errors.New("invalid limit")

	// ErrRunNotFound is returned when a run is not found.
	ErrRunNotFound = persistence.ErrRunNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidWorkflow) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidLimit) ||
		errs.IsValidationError(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
