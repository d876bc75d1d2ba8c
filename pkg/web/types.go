// Package web provides HTTP request and response types for the flow API.
package web

import (
	"time"

	"github.com/dialvox/ivrflow/pkg/auth"
	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/session"
)

// CreateFlowRequest represents the request body for creating a new flow.
type CreateFlowRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
	Status      string `json:"status"      validate:"omitempty,oneof=draft active archived"`
}

// UpdateFlowRequest represents the request body for updating flow
// metadata. All fields are optional to support partial updates; the
// version history is never touched through this request.
type UpdateFlowRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"      validate:"omitempty,oneof=draft active archived"`
}

// CreateVersionRequest represents the request body for appending a new
// version to a flow's history.
type CreateVersionRequest struct {
	Definition *models.Definition `json:"definition" validate:"required"`
	Viewport   *models.Viewport   `json:"viewport,omitempty"`
}

// ValidateDefinitionRequest represents the request body for a dry-run
// validation of a definition.
type ValidateDefinitionRequest struct {
	Definition *models.Definition `json:"definition" validate:"required"`
}

// AddNodeRequest represents the request body for adding a node to a
// session's working copy.
type AddNodeRequest struct {
	ID        string         `json:"id"         validate:"required"`
	Kind      string         `json:"kind"       validate:"required"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// ToNode converts the request into a domain node.
func (r AddNodeRequest) ToNode() *models.Node {
	return &models.Node{
		ID:        r.ID,
		Kind:      models.NodeKind(r.Kind),
		Name:      r.Name,
		Config:    r.Config,
		PositionX: r.PositionX,
		PositionY: r.PositionY,
	}
}

// AddEdgeRequest represents the request body for adding an edge to a
// session's working copy.
type AddEdgeRequest struct {
	ID        string `json:"id"     validate:"required"`
	Source    string `json:"source" validate:"required"`
	Target    string `json:"target" validate:"required"`
	Condition string `json:"condition,omitempty"`
}

// ToEdge converts the request into a domain edge.
func (r AddEdgeRequest) ToEdge() *models.Edge {
	return &models.Edge{
		ID:        r.ID,
		Source:    r.Source,
		Target:    r.Target,
		Condition: r.Condition,
	}
}

// SetStartNodeRequest represents the request body for pointing a
// session's start reference at a node.
type SetStartNodeRequest struct {
	NodeID string `json:"node_id" validate:"required"`
}

// SetViewportRequest represents the request body for recording the
// editor camera on a session.
type SetViewportRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// SessionResponse is the editing session as rendered to the UI.
type SessionResponse struct {
	ID             string             `json:"id"`
	FlowID         string             `json:"flow_id,omitempty"`
	State          string             `json:"state"`
	Definition     *models.Definition `json:"definition,omitempty"`
	Viewport       *models.Viewport   `json:"viewport,omitempty"`
	LatestSequence int64              `json:"latest_sequence"`
	CanUndo        bool               `json:"can_undo"`
	CanRedo        bool               `json:"can_redo"`
	LastActivity   time.Time          `json:"last_activity"`
}

// TransformSessionResponse renders a session for the UI.
func TransformSessionResponse(sess *session.Session) SessionResponse {
	response := SessionResponse{
		ID:           sess.ID(),
		FlowID:       sess.FlowID(),
		State:        string(sess.State()),
		Definition:   sess.Definition(),
		Viewport:     sess.Viewport(),
		CanUndo:      sess.CanUndo(),
		CanRedo:      sess.CanRedo(),
		LastActivity: sess.LastActivity(),
	}

	if latest := sess.Latest(); latest != nil {
		response.LatestSequence = latest.Sequence
	}

	return response
}

// SaveSessionResponse carries the version created by a session save
// together with the validation outcome and the refreshed session.
type SaveSessionResponse struct {
	Version    *models.Version        `json:"version"`
	Validation *flow.ValidationResult `json:"validation"`
	Session    SessionResponse        `json:"session"`
}

// PermissionsResponse lists what the calling identity may do, for UI
// gating.
type PermissionsResponse struct {
	Role        string            `json:"role,omitempty"`
	Superuser   bool              `json:"superuser"`
	Permissions []auth.Permission `json:"permissions"`
}
