package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrFlowNotFound indicates a flow was not found by the given identifier.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrFlowAlreadyExists indicates a flow with the same identifier already exists.
	ErrFlowAlreadyExists = errors.New("flow already exists")

	// ErrVersionNotFound indicates a version was not found by the given sequence.
	ErrVersionNotFound = errors.New("version not found")

	// ErrInvalidFlowStatus indicates an invalid flow status was provided.
	ErrInvalidFlowStatus = errors.New("invalid flow status")
)

// FlowError wraps flow-related errors with additional context.
type FlowError struct {
	Op      string // Operation being performed (e.g., "GetByID", "CreateVersion")
	FlowID  string // Flow ID if applicable
	Err     error  // Underlying error
	Message string // Additional context message
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for flow %s: %s (%v)", e.Op, e.FlowID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for flow %s: %v", e.Op, e.FlowID, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for flow errors.
func (e *FlowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewFlowError creates a new flow error with context.
func NewFlowError(op, flowID string, err error) *FlowError {
	return &FlowError{
		Op:     op,
		FlowID: flowID,
		Err:    err,
	}
}

// VersionError wraps version-related errors with additional context.
type VersionError struct {
	Op       string // Operation being performed
	FlowID   string // Flow ID
	Sequence int64  // Version sequence if applicable
	Err      error  // Underlying error
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s operation failed for version %d of flow %s: %v", e.Op, e.Sequence, e.FlowID, e.Err)
}

func (e *VersionError) Unwrap() error {
	return e.Err
}

func (e *VersionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewVersionError creates a new version error with context.
func NewVersionError(op, flowID string, sequence int64, err error) *VersionError {
	return &VersionError{
		Op:       op,
		FlowID:   flowID,
		Sequence: sequence,
		Err:      err,
	}
}

// IsFlowNotFound checks if an error indicates a flow was not found.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// IsFlowAlreadyExists checks if an error indicates a duplicate flow identifier.
func IsFlowAlreadyExists(err error) bool {
	return errors.Is(err, ErrFlowAlreadyExists)
}

// IsVersionNotFound checks if an error indicates a version was not found.
func IsVersionNotFound(err error) bool {
	return errors.Is(err, ErrVersionNotFound)
}
