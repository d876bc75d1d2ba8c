// Package flow implements pure transformations and validation over IVR
// call flow definitions. Operations never mutate their input; they
// return a fresh definition on success and the input unchanged on
// failure, which keeps undo stacks and version snapshots free of
// aliasing bugs.
package flow

import (
	"errors"
	"fmt"
)

// Graph operation error types surfaced by the editing operations.
var (
	// ErrDuplicateNodeID indicates a node with the same identifier already exists.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrDuplicateEdgeID indicates an edge with the same identifier already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge id")

	// ErrDanglingEndpoint indicates an edge endpoint that does not resolve to a node.
	ErrDanglingEndpoint = errors.New("dangling edge endpoint")

	// ErrUnknownNode indicates a referenced node is absent from the definition.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidStartKind indicates a start reference to a node that is not a start node.
	ErrInvalidStartKind = errors.New("node is not a start node")
)

// GraphError wraps graph operation failures with the offending element.
type GraphError struct {
	Op     string // Operation being performed (e.g., "AddNode", "SetStartNode")
	NodeID string // Node ID if applicable
	EdgeID string // Edge ID if applicable
	Err    error  // Underlying error
}

func (e *GraphError) Error() string {
	target := e.NodeID
	if e.EdgeID != "" {
		target = fmt.Sprintf("edge %s", e.EdgeID)
	} else if target != "" {
		target = fmt.Sprintf("node %s", target)
	}

	if target == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s failed for %s: %v", e.Op, target, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for graph errors.
func (e *GraphError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewNodeError creates a graph error for a node-scoped operation.
func NewNodeError(op, nodeID string, err error) *GraphError {
	return &GraphError{
		Op:     op,
		NodeID: nodeID,
		Err:    err,
	}
}

// NewEdgeError creates a graph error for an edge-scoped operation.
func NewEdgeError(op, edgeID string, err error) *GraphError {
	return &GraphError{
		Op:     op,
		EdgeID: edgeID,
		Err:    err,
	}
}

// IsDuplicateID checks if an error indicates a duplicate node or edge identifier.
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateNodeID) || errors.Is(err, ErrDuplicateEdgeID)
}

// IsDanglingEndpoint checks if an error indicates an unresolved edge endpoint.
func IsDanglingEndpoint(err error) bool {
	return errors.Is(err, ErrDanglingEndpoint)
}

// IsUnknownNode checks if an error indicates a missing node reference.
func IsUnknownNode(err error) bool {
	return errors.Is(err, ErrUnknownNode)
}

// IsInvalidStartKind checks if an error indicates a start reference to the wrong node kind.
func IsInvalidStartKind(err error) bool {
	return errors.Is(err, ErrInvalidStartKind)
}
