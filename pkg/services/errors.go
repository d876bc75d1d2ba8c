// Package services provides the flow management facade used by the HTTP API
// and the editing session coordinator.
package services

import (
	"errors"
	"fmt"

	"github.com/dialvox/ivrflow/pkg/flow"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidSortField  = errors.New("invalid sort field")
	ErrInvalidSortOrder  = errors.New("invalid sort order")
	ErrInvalidStatus     = errors.New("invalid flow status")
	ErrFlowNameRequired  = errors.New("flow name is required")
	ErrInvalidDefinition = errors.New("definition failed validation")
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

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
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

// ValidationError carries the full validation result for a rejected
// definition so callers can point at the offending nodes and edges.
// Only hard errors produce one; warnings never block a save.
type ValidationError struct {
	Result *flow.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("definition failed validation with %d error(s)", len(e.Result.Errors))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDefinition
}

// AsValidationError extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}

	return nil, false
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrFlowNameRequired) ||
		errors.Is(err, ErrInvalidDefinition)
}
