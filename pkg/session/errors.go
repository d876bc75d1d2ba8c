package session

import (
	"errors"
)

var (
	// ErrConcurrentSave is returned when a save is requested while
	// another save for the same session is still in flight.
	ErrConcurrentSave = errors.New("a save is already in flight for this session")

	// ErrSessionClosed is returned by every operation on a closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrNoFlowLoaded is returned when an operation requires a hydrated
	// working copy and none has been loaded yet.
	ErrNoFlowLoaded = errors.New("no flow is loaded in this session")

	// ErrNotEditing is returned when an editing operation arrives while
	// a save is in flight.
	ErrNotEditing = errors.New("session is not in the editing state")

	// ErrAlreadyLoaded is returned by Load on a session that already
	// carries a flow. Sessions are bound to one flow for their lifetime.
	ErrAlreadyLoaded = errors.New("session already has a flow loaded")

	// ErrStaleLoad is returned by Load when its result arrived after the
	// session had moved on and was therefore discarded.
	ErrStaleLoad = errors.New("load result discarded because the session moved on")

	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrSessionNotFound is returned by the manager for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
)
