package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/persistence/file"
	"github.com/dialvox/ivrflow/pkg/registry"
	"github.com/dialvox/ivrflow/pkg/services"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newTestFlows(t *testing.T) *services.Flow {
	t.Helper()

	logger := newTestLogger()

	return services.NewFlow(file.NewPersistence(t.TempDir()), registry.NewRegistry(logger), nil, logger)
}

func createFlow(t *testing.T, flows *services.Flow, name string) *models.Flow {
	t.Helper()

	created, err := flows.Create(t.Context(), services.CreateFlowRequest{Name: name})
	require.NoError(t, err)

	return created
}

func newEditingSession(t *testing.T, flows FlowService, flowID string) *Session {
	t.Helper()

	sess := NewSession("sess-test", flows, newTestLogger())
	require.NoError(t, sess.Load(t.Context(), flowID))
	require.Equal(t, StateEditing, sess.State())

	return sess
}

func warningCodes(result *flow.ValidationResult) []string {
	codes := make([]string, 0, len(result.Warnings))
	for _, issue := range result.Warnings {
		codes = append(codes, issue.Code)
	}

	return codes
}

// blockingFlowService stalls SaveVersion until release is closed so tests
// can observe a session mid-save.
type blockingFlowService struct {
	FlowService

	entered chan struct{}
	release chan struct{}
}

func (s *blockingFlowService) SaveVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, *flow.ValidationResult, error) {
	s.entered <- struct{}{}
	<-s.release

	return s.FlowService.SaveVersion(ctx, flowID, def, viewport)
}

// blockingLoadService stalls FetchByID until release is closed.
type blockingLoadService struct {
	FlowService

	entered chan struct{}
	release chan struct{}
}

func (s *blockingLoadService) FetchByID(ctx context.Context, id string) (*models.Flow, error) {
	s.entered <- struct{}{}
	<-s.release

	return s.FlowService.FetchByID(ctx, id)
}

// failingFlowService rejects the first SaveVersion calls before
// delegating.
type failingFlowService struct {
	FlowService

	failures int
}

func (s *failingFlowService) SaveVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, *flow.ValidationResult, error) {
	if s.failures > 0 {
		s.failures--

		return nil, nil, errors.New("version store unavailable")
	}

	return s.FlowService.SaveVersion(ctx, flowID, def, viewport)
}

type saveOutcome struct {
	version *models.Version
	err     error
}

func TestSession_LoadEmptyFlow(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")

	sess := newEditingSession(t, flows, created.ID)

	assert.Equal(t, created.ID, sess.FlowID())
	assert.Nil(t, sess.Latest())
	require.NotNil(t, sess.Definition())
	assert.Empty(t, sess.Definition().Nodes)
	assert.Empty(t, sess.Definition().Edges)
	assert.Empty(t, sess.Definition().StartNode)
	assert.Nil(t, sess.Viewport())
	assert.False(t, sess.CanUndo())
	assert.False(t, sess.CanRedo())
}

func TestSession_LoadHydratesNewestVersion(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")

	first := &models.Definition{
		Nodes: []*models.Node{{ID: "n1", Kind: models.NodeKindStart}},
		Edges: []*models.Edge{},
	}
	_, _, err := flows.SaveVersion(t.Context(), created.ID, first, nil)
	require.NoError(t, err)

	second := &models.Definition{
		Nodes: []*models.Node{
			{ID: "n1", Kind: models.NodeKindStart, PositionX: 40, PositionY: 80},
			{ID: "n2", Kind: models.NodeKindHangUp, PositionX: 240, PositionY: 80},
		},
		Edges:     []*models.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
		StartNode: "n1",
	}
	viewport := &models.Viewport{X: 100, Y: 50, Zoom: 1.25}
	_, _, err = flows.SaveVersion(t.Context(), created.ID, second, viewport)
	require.NoError(t, err)

	sess := newEditingSession(t, flows, created.ID)

	require.NotNil(t, sess.Latest())
	assert.Equal(t, int64(2), sess.Latest().Sequence)
	assert.Equal(t, second, sess.Definition())
	assert.Equal(t, viewport, sess.Viewport())

	// the working copy is hydrated from a deep clone, never aliased to
	// the loaded version
	assert.NotSame(t, sess.Latest().Definition, sess.Definition())
}

func TestSession_LoadUnknownFlowResetsForRetry(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")

	sess := NewSession("sess-test", flows, newTestLogger())

	err := sess.Load(t.Context(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrFlowNotFound)
	assert.Equal(t, StateEmpty, sess.State())
	assert.Empty(t, sess.FlowID())

	require.NoError(t, sess.Load(t.Context(), created.ID))
	assert.Equal(t, StateEditing, sess.State())
}

func TestSession_LoadTwice(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")

	sess := newEditingSession(t, flows, created.ID)

	err := sess.Load(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
}

func TestSession_GraphOperations(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")
	sess := newEditingSession(t, flows, created.ID)

	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))
	require.NoError(t, sess.AddNode(&models.Node{ID: "n2", Kind: models.NodeKindHangUp}))
	require.NoError(t, sess.AddEdge(&models.Edge{ID: "e1", Source: "n1", Target: "n2"}))
	require.NoError(t, sess.SetStartNode("n1"))

	def := sess.Definition()
	assert.Len(t, def.Nodes, 2)
	assert.Len(t, def.Edges, 1)
	assert.Equal(t, "n1", def.StartNode)

	// removing a node cascades to its edges and the start reference
	require.NoError(t, sess.RemoveNode("n1"))

	def = sess.Definition()
	assert.Len(t, def.Nodes, 1)
	assert.Empty(t, def.Edges)
	assert.Empty(t, def.StartNode)
}

func TestSession_GraphErrorsLeaveWorkingCopyUnchanged(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")
	sess := newEditingSession(t, flows, created.ID)

	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))
	before := sess.Definition()

	err := sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindHangUp})
	require.Error(t, err)
	assert.ErrorIs(t, err, flow.ErrDuplicateNodeID)
	assert.Same(t, before, sess.Definition())

	err = sess.AddEdge(&models.Edge{ID: "e1", Source: "n1", Target: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, flow.ErrDanglingEndpoint)
	assert.Same(t, before, sess.Definition())

	err = sess.SetStartNode("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, flow.ErrUnknownNode)
	assert.Same(t, before, sess.Definition())

	// failed operations are not undoable
	require.NoError(t, sess.Undo())
	assert.ErrorIs(t, sess.Undo(), ErrNothingToUndo)
}

func TestSession_OperationsRequireLoadedFlow(t *testing.T) {
	flows := newTestFlows(t)
	sess := NewSession("sess-test", flows, newTestLogger())

	assert.ErrorIs(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}), ErrNoFlowLoaded)
	assert.ErrorIs(t, sess.AddEdge(&models.Edge{ID: "e1", Source: "a", Target: "b"}), ErrNoFlowLoaded)
	assert.ErrorIs(t, sess.SetStartNode("n1"), ErrNoFlowLoaded)
	assert.ErrorIs(t, sess.RemoveNode("n1"), ErrNoFlowLoaded)
	assert.ErrorIs(t, sess.SetViewport(models.Viewport{Zoom: 1}), ErrNoFlowLoaded)
	assert.ErrorIs(t, sess.Undo(), ErrNoFlowLoaded)
	assert.ErrorIs(t, sess.Redo(), ErrNoFlowLoaded)

	_, _, err := sess.Save(t.Context())
	assert.ErrorIs(t, err, ErrNoFlowLoaded)
}

func TestSession_OperationsOnClosedSession(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")
	sess := newEditingSession(t, flows, created.ID)

	sess.Close()
	sess.Close() // idempotent

	assert.True(t, sess.Closed())
	assert.ErrorIs(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}), ErrSessionClosed)
	assert.ErrorIs(t, sess.Undo(), ErrSessionClosed)
	assert.ErrorIs(t, sess.Load(t.Context(), created.ID), ErrSessionClosed)

	_, _, err := sess.Save(t.Context())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_UndoRedo(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")
	sess := newEditingSession(t, flows, created.ID)

	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))
	require.NoError(t, sess.AddNode(&models.Node{ID: "n2", Kind: models.NodeKindHangUp}))
	require.Len(t, sess.Definition().Nodes, 2)
	assert.True(t, sess.CanUndo())
	assert.False(t, sess.CanRedo())

	require.NoError(t, sess.Undo())
	assert.Len(t, sess.Definition().Nodes, 1)

	require.NoError(t, sess.Undo())
	assert.Empty(t, sess.Definition().Nodes)
	assert.False(t, sess.CanUndo())
	assert.ErrorIs(t, sess.Undo(), ErrNothingToUndo)

	require.NoError(t, sess.Redo())
	require.NoError(t, sess.Redo())
	assert.Len(t, sess.Definition().Nodes, 2)
	assert.ErrorIs(t, sess.Redo(), ErrNothingToRedo)

	// a fresh operation clears the redo branch
	require.NoError(t, sess.Undo())
	require.NoError(t, sess.AddNode(&models.Node{ID: "n3", Kind: models.NodeKindPlayAudio}))
	assert.False(t, sess.CanRedo())
	assert.ErrorIs(t, sess.Redo(), ErrNothingToRedo)
}

func TestSession_SetViewportIsNotUndoable(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")
	sess := newEditingSession(t, flows, created.ID)

	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))
	require.NoError(t, sess.SetViewport(models.Viewport{X: 10, Y: 20, Zoom: 2}))

	require.NoError(t, sess.Undo())
	assert.Empty(t, sess.Definition().Nodes)
	assert.Equal(t, &models.Viewport{X: 10, Y: 20, Zoom: 2}, sess.Viewport())
	assert.False(t, sess.CanUndo())
}

func TestSession_SaveCreatesVersions(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")
	sess := newEditingSession(t, flows, created.ID)

	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))
	require.NoError(t, sess.AddNode(&models.Node{ID: "n2", Kind: models.NodeKindHangUp}))
	require.NoError(t, sess.AddEdge(&models.Edge{ID: "e1", Source: "n1", Target: "n2"}))
	require.NoError(t, sess.SetStartNode("n1"))

	version, result, err := sess.Save(t.Context())
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.True(t, result.Valid())
	assert.Equal(t, int64(1), version.Sequence)
	assert.Equal(t, StateEditing, sess.State())
	assert.Same(t, version, sess.Latest())

	// the working copy stands after a save; no re-fetch happens
	require.NoError(t, sess.RemoveNode("n2"))

	second, _, err := sess.Save(t.Context())
	require.NoError(t, err)
	assert.Greater(t, second.Sequence, version.Sequence)
	assert.Len(t, second.Definition.Nodes, 1)
}

func TestSession_SaveEmptyDefinitionWarns(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")
	sess := newEditingSession(t, flows, created.ID)

	version, result, err := sess.Save(t.Context())
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.True(t, result.Valid())
	assert.Contains(t, warningCodes(result), flow.CodeMissingStartNode)
}

func TestSession_ConcurrentSaveRejected(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Race Line")

	blocking := &blockingFlowService{
		FlowService: flows,
		entered:     make(chan struct{}, 8),
		release:     make(chan struct{}),
	}
	sess := newEditingSession(t, blocking, created.ID)
	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))

	done := make(chan saveOutcome, 1)

	go func() {
		version, _, err := sess.Save(t.Context())
		done <- saveOutcome{version: version, err: err}
	}()

	<-blocking.entered
	assert.Equal(t, StateSaving, sess.State())

	_, _, err := sess.Save(t.Context())
	assert.ErrorIs(t, err, ErrConcurrentSave)

	// graph operations are rejected while the save is in flight
	assert.ErrorIs(t, sess.AddNode(&models.Node{ID: "n2", Kind: models.NodeKindHangUp}), ErrNotEditing)

	close(blocking.release)

	first := <-done
	require.NoError(t, first.err)
	require.NotNil(t, first.version)
	assert.Equal(t, int64(1), first.version.Sequence)
	assert.Equal(t, StateEditing, sess.State())

	second, _, err := sess.Save(t.Context())
	require.NoError(t, err)
	assert.Greater(t, second.Sequence, first.version.Sequence)
}

func TestSession_SaveFailureKeepsWorkingCopy(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")

	failing := &failingFlowService{FlowService: flows, failures: 1}
	sess := newEditingSession(t, failing, created.ID)
	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))

	before := sess.Definition()

	_, _, err := sess.Save(t.Context())
	require.Error(t, err)
	assert.Equal(t, StateEditing, sess.State())
	assert.Same(t, before, sess.Definition())
	assert.Nil(t, sess.Latest())

	version, _, err := sess.Save(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version.Sequence)
	assert.Same(t, version, sess.Latest())
}

func TestSession_CloseDiscardsInFlightLoad(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Abandoned Line")

	blocking := &blockingLoadService{
		FlowService: flows,
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	sess := NewSession("sess-abandoned", blocking, newTestLogger())

	loadErr := make(chan error, 1)

	go func() {
		loadErr <- sess.Load(t.Context(), created.ID)
	}()

	<-blocking.entered
	assert.Equal(t, StateLoading, sess.State())

	sess.Close()
	close(blocking.release)

	err := <-loadErr
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.True(t, sess.Closed())
	assert.Nil(t, sess.Definition())
	assert.NotEqual(t, StateEditing, sess.State())
}

func TestSession_CloseDuringSaveStillPersists(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Abandoned Line")

	blocking := &blockingFlowService{
		FlowService: flows,
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	sess := newEditingSession(t, blocking, created.ID)
	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart}))

	done := make(chan saveOutcome, 1)

	go func() {
		version, _, err := sess.Save(t.Context())
		done <- saveOutcome{version: version, err: err}
	}()

	<-blocking.entered
	sess.Close()
	close(blocking.release)

	// the store write is append-only and already in flight; it lands,
	// but the closed session is left alone
	outcome := <-done
	require.NoError(t, outcome.err)
	require.NotNil(t, outcome.version)
	assert.Equal(t, int64(1), outcome.version.Sequence)
	assert.Nil(t, sess.Latest())

	fetched, err := flows.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Versions, 1)
}

func TestSession_EndToEndSupportLine(t *testing.T) {
	flows := newTestFlows(t)
	created := createFlow(t, flows, "Support Line")

	sess := newEditingSession(t, flows, created.ID)
	assert.Nil(t, sess.Latest())
	assert.Empty(t, sess.Definition().Nodes)

	require.NoError(t, sess.AddNode(&models.Node{ID: "n1", Kind: models.NodeKindStart, Name: "Entry"}))
	require.NoError(t, sess.AddNode(&models.Node{ID: "n2", Kind: models.NodeKindHangUp, Name: "Done"}))
	require.NoError(t, sess.AddEdge(&models.Edge{ID: "e1", Source: "n1", Target: "n2"}))
	require.NoError(t, sess.SetStartNode("n1"))
	require.NoError(t, sess.SetViewport(models.Viewport{X: 120, Y: 80, Zoom: 1}))

	version, result, err := sess.Save(t.Context())
	require.NoError(t, err)
	assert.True(t, result.Valid())
	assert.Equal(t, int64(1), version.Sequence)
	assert.Equal(t, "n1", version.Definition.StartNode)
	assert.Len(t, version.Definition.Nodes, 2)
	assert.Len(t, version.Definition.Edges, 1)

	reopened := newEditingSession(t, flows, created.ID)
	require.NotNil(t, reopened.Latest())
	assert.Equal(t, int64(1), reopened.Latest().Sequence)
	assert.Equal(t, version.Definition, reopened.Definition())
	assert.Equal(t, &models.Viewport{X: 120, Y: 80, Zoom: 1}, reopened.Viewport())
}
