// Package session coordinates the lifecycle of one flow-editing session:
// loading a flow into an in-memory working copy, applying graph operations
// to it, and saving snapshots back through the version store.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/models"
)

// State identifies where a session is in its lifecycle.
type State string

const (
	// StateEmpty is the initial state, before any flow has been loaded.
	StateEmpty State = "empty"
	// StateLoading means a flow fetch is in flight.
	StateLoading State = "loading"
	// StateEditing means the working copy is hydrated and accepts
	// graph operations.
	StateEditing State = "editing"
	// StateSaving means a version write is in flight.
	StateSaving State = "saving"
)

// maxUndoDepth bounds the undo stack so long editing sessions do not
// accumulate unbounded definition snapshots.
const maxUndoDepth = 100

// FlowService is the slice of the flow service a session needs: one read
// to hydrate and one write to snapshot. *services.Flow implements it.
type FlowService interface {
	FetchByID(ctx context.Context, id string) (*models.Flow, error)
	SaveVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, *flow.ValidationResult, error)
}

// Session is the per-editor lifecycle coordinator. All graph operations
// apply to an in-memory working copy and never touch the version store;
// only Save writes, and only Load reads. Load and Save release the
// session lock while their store call is in flight, so a session is
// never blocked on the network by its own bookkeeping.
//
// Because graph operations return fresh Definition values instead of
// mutating in place, undo and redo are plain stacks of prior snapshots
// and readers of Definition always observe a consistent value.
type Session struct {
	id     string
	flows  FlowService
	logger *slog.Logger

	mu           sync.Mutex
	state        State
	closed       bool
	epoch        int
	flowID       string
	definition   *models.Definition
	viewport     *models.Viewport
	latest       *models.Version
	undo         []*models.Definition
	redo         []*models.Definition
	lastActivity time.Time
}

// NewSession returns an empty session ready for Load.
func NewSession(id string, flows FlowService, logger *slog.Logger) *Session {
	return &Session{
		id:           id,
		flows:        flows,
		logger:       logger.With("session_id", id),
		state:        StateEmpty,
		lastActivity: time.Now().UTC(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// FlowID returns the identifier of the loaded flow, or the empty string
// before a successful Load.
func (s *Session) FlowID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flowID
}

// Definition returns the working copy, or nil before a flow is loaded.
// Callers must treat the returned value as read-only; mutations go
// through the session's graph operations.
func (s *Session) Definition() *models.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.definition
}

// Viewport returns the working viewport, or nil when none was loaded or
// set.
func (s *Session) Viewport() *models.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewport
}

// Latest returns the most recently loaded or successfully saved version,
// or nil for a flow with no versions yet.
func (s *Session) Latest() *models.Version {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest
}

// LastActivity returns the time of the last operation on the session.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActivity
}

// CanUndo reports whether an Undo would apply.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.undo) > 0
}

// CanRedo reports whether a Redo would apply.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.redo) > 0
}

// Load fetches the flow and hydrates the working copy from its newest
// version, or from an empty definition when the flow has no versions
// yet. Load may only be called once per session; a failed Load resets
// the session so it can be retried.
//
// The fetch runs without the session lock held. A result that arrives
// after the session has been closed or reloaded is discarded rather
// than applied, and Load reports ErrStaleLoad or ErrSessionClosed.
func (s *Session) Load(ctx context.Context, flowID string) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return ErrSessionClosed
	}

	if s.state != StateEmpty {
		s.mu.Unlock()

		return ErrAlreadyLoaded
	}

	s.state = StateLoading
	s.flowID = flowID
	s.epoch++
	epoch := s.epoch
	s.touchLocked()
	s.mu.Unlock()

	flowRecord, err := s.flows.FetchByID(ctx, flowID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("discarding load result for closed session", "flow_id", flowID)

		return ErrSessionClosed
	}

	if s.epoch != epoch || s.flowID != flowID {
		s.logger.Warn("discarding stale load result", "flow_id", flowID)

		return ErrStaleLoad
	}

	if err != nil {
		s.state = StateEmpty
		s.flowID = ""

		return fmt.Errorf("failed to load flow %s: %w", flowID, err)
	}

	definition := models.NewDefinition()

	var viewport *models.Viewport

	latest := flowRecord.LatestVersion()
	if latest != nil {
		definition = latest.Definition.Clone()

		if latest.Viewport != nil {
			copied := *latest.Viewport
			viewport = &copied
		}
	}

	s.definition = definition
	s.viewport = viewport
	s.latest = latest
	s.undo = nil
	s.redo = nil
	s.state = StateEditing
	s.touchLocked()

	return nil
}

// AddNode appends a node to the working copy.
func (s *Session) AddNode(node *models.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditingLocked(); err != nil {
		return err
	}

	next, err := flow.AddNode(s.definition, node)
	if err != nil {
		return err
	}

	s.applyLocked(next)

	return nil
}

// AddEdge appends an edge to the working copy.
func (s *Session) AddEdge(edge *models.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditingLocked(); err != nil {
		return err
	}

	next, err := flow.AddEdge(s.definition, edge)
	if err != nil {
		return err
	}

	s.applyLocked(next)

	return nil
}

// SetStartNode points the working copy's start reference at the node.
func (s *Session) SetStartNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditingLocked(); err != nil {
		return err
	}

	next, err := flow.SetStartNode(s.definition, nodeID)
	if err != nil {
		return err
	}

	s.applyLocked(next)

	return nil
}

// RemoveNode removes a node and every edge touching it from the working
// copy.
func (s *Session) RemoveNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditingLocked(); err != nil {
		return err
	}

	next, err := flow.RemoveNode(s.definition, nodeID)
	if err != nil {
		return err
	}

	s.applyLocked(next)

	return nil
}

// SetViewport records the editor camera on the working copy. Viewport
// changes are not undoable.
func (s *Session) SetViewport(viewport models.Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditingLocked(); err != nil {
		return err
	}

	s.viewport = &viewport
	s.touchLocked()

	return nil
}

// Undo restores the working copy that preceded the last graph operation.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditingLocked(); err != nil {
		return err
	}

	if len(s.undo) == 0 {
		return ErrNothingToUndo
	}

	previous := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.definition)
	s.definition = previous
	s.touchLocked()

	return nil
}

// Redo reapplies the most recently undone graph operation.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEditingLocked(); err != nil {
		return err
	}

	if len(s.redo) == 0 {
		return ErrNothingToRedo
	}

	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.definition)
	s.definition = next
	s.touchLocked()

	return nil
}

// Save snapshots the working copy and viewport as a new version. At most
// one save may be in flight per session; a second request is rejected
// with ErrConcurrentSave rather than queued. On success the returned
// version becomes Latest and the working copy stands as is. On failure
// the session returns to editing with the working copy untouched.
//
// The validation result is returned alongside the version so advisory
// warnings reach the caller even when the save succeeds.
func (s *Session) Save(ctx context.Context) (*models.Version, *flow.ValidationResult, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil, nil, ErrSessionClosed
	}

	switch s.state {
	case StateSaving:
		s.mu.Unlock()

		return nil, nil, ErrConcurrentSave
	case StateEmpty, StateLoading:
		s.mu.Unlock()

		return nil, nil, ErrNoFlowLoaded
	case StateEditing:
	}

	s.state = StateSaving
	flowID := s.flowID
	definition := s.definition.Clone()

	var viewport *models.Viewport

	if s.viewport != nil {
		copied := *s.viewport
		viewport = &copied
	}

	epoch := s.epoch
	s.touchLocked()
	s.mu.Unlock()

	version, result, err := s.flows.SaveVersion(ctx, flowID, definition, viewport)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed && s.epoch == epoch && s.state == StateSaving {
		s.state = StateEditing

		if err == nil {
			s.latest = version
		}

		s.touchLocked()
	}

	if err != nil {
		return nil, result, err
	}

	return version, result, nil
}

// Close marks the session closed. Closing is idempotent; results of
// loads or saves still in flight are discarded when they complete.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.epoch++
}

func (s *Session) requireEditingLocked() error {
	if s.closed {
		return ErrSessionClosed
	}

	switch s.state {
	case StateEmpty, StateLoading:
		return ErrNoFlowLoaded
	case StateSaving:
		return ErrNotEditing
	case StateEditing:
	}

	return nil
}

func (s *Session) applyLocked(next *models.Definition) {
	s.undo = append(s.undo, s.definition)
	if len(s.undo) > maxUndoDepth {
		s.undo = s.undo[1:]
	}

	s.redo = nil
	s.definition = next
	s.touchLocked()
}

func (s *Session) touchLocked() {
	s.lastActivity = time.Now().UTC()
}
