// Package errs defines the error kinds shared by the pipeline and its adapters.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Adapters wrap these so callers can classify failures with errors.Is.
var (
	// ErrConfiguration indicates missing or invalid configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation indicates bad caller input such as a malformed URL or path.
	ErrValidation = errors.New("validation error")

	// ErrProvider indicates an external service (video source, LLM) failed.
	ErrProvider = errors.New("provider error")

	// ErrAuthentication indicates a provider rejected the credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited indicates a provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a provider call did not finish in time.
	ErrTimeout = errors.New("timeout")

	// ErrTranscript indicates a transcript could not be extracted, saved or loaded.
	ErrTranscript = errors.New("transcript error")

	// ErrStorage indicates a filesystem or store operation failed.
	ErrStorage = errors.New("storage error")
)

// ProviderError wraps a failed call to an external service with context.
type ProviderError struct {
	Provider   string // e.g. "openai", "youtube"
	Op         string // operation being performed
	StatusCode int    // HTTP status if the provider answered
	Kind       error  // one of ErrAuthentication, ErrRateLimited, ErrTimeout, or nil
	Err        error  // underlying error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches ErrProvider, the error's Kind, and anything the wrapped error matches.
func (e *ProviderError) Is(target error) bool {
	if target == ErrProvider {
		return true
	}

	return e.Kind != nil && e.Kind == target
}

// NewProviderError creates a provider error of the given kind.
func NewProviderError(provider, op string, kind, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Kind:     kind,
		Err:      err,
	}
}

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Configurationf returns a configuration error with a formatted message.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// IsValidationError checks if an error is caused by bad input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfigurationError checks if an error is caused by configuration.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsProviderError checks if an error came from an external service.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProvider)
}

// IsRetryable reports whether the failure is transient from the caller's point of view.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}
