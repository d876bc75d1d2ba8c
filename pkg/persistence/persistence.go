// Package persistence provides the storage contract for flows and their
// immutable version history.
package persistence

import (
	"context"

	"github.com/dialvox/ivrflow/pkg/models"
)

// Persistence is the storage layer as seen by the services. Concrete
// implementations live in the file and postgresql subpackages.
type Persistence interface {
	FlowRepository() FlowRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ListFlowsOptions controls filtering, sorting and pagination of flow
// listings.
type ListFlowsOptions struct {
	Limit           int
	Offset          int
	SortBy          string // "created_at", "updated_at" or "name"
	SortOrder       string // "asc" or "desc"
	Status          *models.FlowStatus
	IncludeVersions bool
}

// FlowListResult carries one page of flows plus pagination metadata.
type FlowListResult struct {
	Flows       []*models.Flow
	TotalCount  int64
	HasNextPage bool
}

// FlowRepository stores flows and their versions. Versions are append
// only: CreateVersion is the single write path and there is
// deliberately no operation to update or delete an existing version,
// so concurrent or retried saves can never corrupt history. Deleting a
// flow removes the whole container, versions included.
type FlowRepository interface {
	// ListFlows returns a page of flows. Versions are omitted unless
	// opts.IncludeVersions is set.
	ListFlows(ctx context.Context, opts ListFlowsOptions) (*FlowListResult, error)

	// GetByID returns the flow with its versions ordered newest first,
	// or nil when no such flow exists.
	GetByID(ctx context.Context, flowID string) (*models.Flow, error)

	// Create stores a new flow container. It fails with
	// ErrFlowAlreadyExists when the identifier is taken.
	Create(ctx context.Context, flow *models.Flow) error

	// UpdateMetadata updates the flow's name, description and status.
	// The version history is not touched. It fails with
	// ErrFlowNotFound when the flow is unknown.
	UpdateMetadata(ctx context.Context, flow *models.Flow) error

	// Delete removes a flow and all of its versions. Deleting an
	// unknown flow is a no-op.
	Delete(ctx context.Context, flowID string) error

	// CreateVersion appends an immutable snapshot of the definition
	// and viewport to the flow's history and returns the stored
	// version. The repository assigns the identifier, the next
	// sequence number and the creation timestamp, and deep-copies the
	// definition so the caller's working copy is never aliased. It
	// fails with ErrFlowNotFound when the flow is unknown.
	CreateVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, error)
}
