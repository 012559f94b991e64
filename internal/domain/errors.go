package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation signals malformed caller input (arguments, JSON payloads).
	ErrValidation = errors.New("validation failed")
	// ErrConnectivity signals that the search engine could not be reached.
	ErrConnectivity = errors.New("search engine unreachable")
	// ErrEngine signals a well-formed request rejected by the search engine.
	ErrEngine = errors.New("search engine error")
	// ErrNotFound signals a missing collection, document or model.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// NewValidationError wraps ErrValidation with a formatted detail message.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// EngineError carries the engine's HTTP status and message verbatim.
type EngineError struct {
	Status  int
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s (%d): %s", ErrEngine.Error(), e.Status, e.Message)
}

// Unwrap lets errors.Is match ErrEngine, and ErrNotFound for 404 responses.
func (e *EngineError) Unwrap() []error {
	if e.Status == http.StatusNotFound {
		return []error{ErrEngine, ErrNotFound}
	}
	return []error{ErrEngine}
}

// NewEngineError creates an engine error.
func NewEngineError(status int, message string) error {
	return &EngineError{Status: status, Message: message}
}
