package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dialvox/ivrflow/pkg/eventbus"
	"github.com/dialvox/ivrflow/pkg/events"
	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/otelhelper"
	"github.com/dialvox/ivrflow/pkg/persistence"
	"github.com/dialvox/ivrflow/pkg/registry"
)

var (
	// ErrFlowNotFound is returned when a flow is not found.
	ErrFlowNotFound = persistence.ErrFlowNotFound
)

// Flow manages flow metadata and version history. Saving a version runs the
// definition through structural and config validation first; hard errors
// reject the save, warnings ride along with the result.
type Flow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validator   *validator.Validate
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewFlow creates a new flow service. The event bus may be nil, in which
// case lifecycle events are not published.
func NewFlow(p persistence.Persistence, reg *registry.Registry, bus eventbus.EventBus, logger *slog.Logger) *Flow {
	return &Flow{
		persistence: p,
		registry:    reg,
		eventBus:    bus,
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "flow_service"),
		tracer:      otel.Tracer("ivrflow/services"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Flow) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListFlowsRequest contains options for listing flows.
type ListFlowsRequest struct {
	Limit  int
	Offset int

	Status *models.FlowStatus

	SortBy    string
	SortOrder string

	IncludeVersions bool
}

// ListFlowsResponse contains the result of listing flows.
type ListFlowsResponse struct {
	Flows       []*models.Flow `json:"flows"`
	TotalCount  int64          `json:"total_count"`
	HasNextPage bool           `json:"has_next_page"`
}

// List retrieves flows with filtering, sorting, and pagination.
func (s *Flow) List(ctx context.Context, req ListFlowsRequest) (*ListFlowsResponse, error) {
	if err := s.validateListRequest(&req); err != nil {
		return nil, err
	}

	result, err := s.persistence.FlowRepository().ListFlows(ctx, persistence.ListFlowsOptions{
		Limit:           req.Limit,
		Offset:          req.Offset,
		Status:          req.Status,
		SortBy:          req.SortBy,
		SortOrder:       req.SortOrder,
		IncludeVersions: req.IncludeVersions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	return &ListFlowsResponse{
		Flows:       result.Flows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

// validateListRequest validates and sets defaults for the request.
func (s *Flow) validateListRequest(req *ListFlowsRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	allowedSorts := []string{"created_at", "updated_at", "name"}

	if !slices.Contains(allowedSorts, req.SortBy) {
		return NewValidationError(
			"validateListRequest",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field '%s', allowed: %s", req.SortBy, strings.Join(allowedSorts, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order '%s', allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	if req.Status != nil {
		allowedStatuses := []models.FlowStatus{
			models.FlowStatusDraft,
			models.FlowStatusActive,
			models.FlowStatusArchived,
		}

		if !slices.Contains(allowedStatuses, *req.Status) {
			return NewValidationError(
				"validateListRequest",
				"INVALID_STATUS",
				fmt.Sprintf("invalid status '%s'", *req.Status),
				ErrInvalidStatus,
			)
		}
	}

	return nil
}

// FetchByID retrieves a flow by its ID, versions newest first.
func (s *Flow) FetchByID(ctx context.Context, id string) (*models.Flow, error) {
	flowRecord, err := s.persistence.FlowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if flowRecord == nil {
		return nil, ErrFlowNotFound
	}

	return flowRecord, nil
}

// CreateFlowRequest carries the metadata for a new flow.
type CreateFlowRequest struct {
	Name        string            `json:"name"        validate:"required,min=3"`
	Description string            `json:"description"`
	Status      models.FlowStatus `json:"status"      validate:"omitempty,oneof=draft active archived"`
}

// Create adds a new flow with no versions yet.
func (s *Flow) Create(ctx context.Context, req CreateFlowRequest) (*models.Flow, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "flow_service.create",
		attribute.String(otelhelper.FlowNameKey, req.Name))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Create", "INVALID_FLOW", err.Error(), ErrInvalidRequest)
	}

	now := time.Now().UTC()
	flowRecord := &models.Flow{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if flowRecord.Status == "" {
		flowRecord.Status = models.FlowStatusDraft
	}

	err := s.persistence.FlowRepository().Create(ctx, flowRecord)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create flow: %w", err)
	}

	s.publishEvent(ctx, flowRecord.ID, events.FlowCreated{
		BaseEvent: events.NewBaseEvent(events.FlowCreatedEvent, flowRecord.ID),
		Name:      flowRecord.Name,
		Status:    flowRecord.Status,
	})

	return flowRecord, nil
}

// UpdateFlowRequest carries replacement metadata for an existing flow.
type UpdateFlowRequest struct {
	Name        string            `json:"name"        validate:"required,min=3"`
	Description string            `json:"description"`
	Status      models.FlowStatus `json:"status"      validate:"required,oneof=draft active archived"`
}

// UpdateMetadata replaces a flow's name, description and status. Version
// history is never touched.
func (s *Flow) UpdateMetadata(ctx context.Context, flowID string, req UpdateFlowRequest) (*models.Flow, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "flow_service.update_metadata",
		attribute.String(otelhelper.FlowIDKey, flowID))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("UpdateMetadata", "INVALID_FLOW", err.Error(), ErrInvalidRequest)
	}

	err := s.persistence.FlowRepository().UpdateMetadata(ctx, &models.Flow{
		ID:          flowID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		if persistence.IsFlowNotFound(err) {
			return nil, ErrFlowNotFound
		}

		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to update flow: %w", err)
	}

	updated, err := s.FetchByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, flowID, events.FlowMetadataUpdated{
		BaseEvent: events.NewBaseEvent(events.FlowMetadataUpdatedEvent, flowID),
		Name:      updated.Name,
		Status:    updated.Status,
	})

	return updated, nil
}

// Delete removes a flow and its entire version history.
func (s *Flow) Delete(ctx context.Context, flowID string) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "flow_service.delete",
		attribute.String(otelhelper.FlowIDKey, flowID))
	defer span.End()

	existing, err := s.persistence.FlowRepository().GetByID(ctx, flowID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrFlowNotFound
	}

	err = s.persistence.FlowRepository().Delete(ctx, flowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to delete flow: %w", err)
	}

	s.publishEvent(ctx, flowID, events.FlowDeleted{
		BaseEvent: events.NewBaseEvent(events.FlowDeletedEvent, flowID),
	})

	return nil
}

// SaveVersion validates a definition and appends it as a new immutable
// version. Hard validation errors reject the save and come back inside a
// *ValidationError; warnings never block and are returned alongside the
// created version.
func (s *Flow) SaveVersion(
	ctx context.Context,
	flowID string,
	def *models.Definition,
	viewport *models.Viewport,
) (*models.Version, *flow.ValidationResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "flow_service.save_version",
		attribute.String(otelhelper.FlowIDKey, flowID))
	defer span.End()

	result := s.ValidateDefinition(def)
	if !result.Valid() {
		return nil, result, &ValidationError{Result: result}
	}

	version, err := s.persistence.FlowRepository().CreateVersion(ctx, flowID, def, viewport)
	if err != nil {
		if persistence.IsFlowNotFound(err) {
			return nil, result, ErrFlowNotFound
		}

		otelhelper.SetError(span, err)

		return nil, result, fmt.Errorf("failed to save version: %w", err)
	}

	span.SetAttributes(
		attribute.String(otelhelper.VersionIDKey, version.ID),
		attribute.Int64(otelhelper.VersionSequenceKey, version.Sequence),
	)

	s.publishEvent(ctx, flowID, events.FlowVersionCreated{
		BaseEvent: events.NewBaseEvent(events.FlowVersionCreatedEvent, flowID),
		VersionID: version.ID,
		Sequence:  version.Sequence,
		NodeCount: len(version.Definition.Nodes),
		EdgeCount: len(version.Definition.Edges),
	})

	return version, result, nil
}

// ValidateDefinition runs the structural checks plus the per-kind config
// schema checks and returns the combined result. It never mutates the
// definition.
func (s *Flow) ValidateDefinition(def *models.Definition) *flow.ValidationResult {
	result := flow.Validate(def)

	if s.registry != nil && def != nil {
		result.Merge(s.registry.ValidateDefinition(def))
	}

	return result
}

// publishEvent delivers a lifecycle event. Publishing is best effort; a bus
// failure is logged, never surfaced to the caller whose write succeeded.
func (s *Flow) publishEvent(ctx context.Context, flowID string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	err := s.eventBus.Publish(ctx, flowID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(),
			"flow_id", flowID,
			"error", err)
	}
}
