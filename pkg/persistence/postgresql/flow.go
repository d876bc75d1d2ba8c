package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/persistence"
)

// FlowRepository handles flow-related database operations.
type FlowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(db *sql.DB, logger *slog.Logger) *FlowRepository {
	return &FlowRepository{db: db, logger: logger}
}

// ListFlows returns paginated and filtered flows.
func (r *FlowRepository) ListFlows(ctx context.Context, opts persistence.ListFlowsOptions) (*persistence.FlowListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	// Validate sort parameters against allowlist (security)
	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("invalid sort field: %s", opts.SortBy)
	}

	order := "DESC"
	if opts.SortOrder == "asc" {
		order = "ASC"
	}

	var (
		args   []any
		filter string
	)

	if opts.Status != nil {
		filter = "WHERE status = $1"

		args = append(args, string(*opts.Status))
	}

	var totalCount int64

	countQuery := "SELECT COUNT(*) FROM flows " + filter

	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count flows: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			id
		  , name
		  , description
		  , status
		  , created_at
		  , updated_at
		FROM flows
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, filter, opts.SortBy, order, len(args)+1, len(args)+2)

	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	flows := make([]*models.Flow, 0)

	for rows.Next() {
		var flow models.Flow

		err := rows.Scan(
			&flow.ID,
			&flow.Name,
			&flow.Description,
			&flow.Status,
			&flow.CreatedAt,
			&flow.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}

		flows = append(flows, &flow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flows: %w", err)
	}

	if opts.IncludeVersions {
		for _, flow := range flows {
			if err := r.loadVersions(ctx, flow); err != nil {
				return nil, err
			}
		}
	}

	return &persistence.FlowListResult{
		Flows:       flows,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(flows)) < totalCount,
	}, nil
}

// GetByID returns a flow with its versions ordered newest first, or
// nil when the flow is unknown.
func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , status
		  , created_at
		  , updated_at
		FROM flows
		WHERE id = $1
	`

	var flow models.Flow

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&flow.ID,
		&flow.Name,
		&flow.Description,
		&flow.Status,
		&flow.CreatedAt,
		&flow.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan flow: %w", err)
	}

	if err := r.loadVersions(ctx, &flow); err != nil {
		return nil, err
	}

	return &flow, nil
}

// Create stores a new flow container.
func (r *FlowRepository) Create(ctx context.Context, flow *models.Flow) error {
	now := time.Now().UTC()

	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	query := `
		INSERT INTO flows (id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		flow.ID,
		flow.Name,
		flow.Description,
		flow.Status,
		flow.CreatedAt,
		flow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create flow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewFlowError("Create", flow.ID, persistence.ErrFlowAlreadyExists)
	}

	return nil
}

// UpdateMetadata updates name, description and status of an existing
// flow. Versions are never touched here.
func (r *FlowRepository) UpdateMetadata(ctx context.Context, flow *models.Flow) error {
	query := `
		UPDATE flows
		SET name = $2, description = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		flow.ID,
		flow.Name,
		flow.Description,
		flow.Status,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update flow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewFlowError("UpdateMetadata", flow.ID, persistence.ErrFlowNotFound)
	}

	return nil
}

// Delete removes a flow; the versions go with it via ON DELETE CASCADE.
func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM flows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}

	return nil
}

// CreateVersion appends an immutable snapshot inside one transaction.
// The flow row is locked while the next sequence is computed so two
// concurrent saves always get distinct, consecutive numbers.
func (r *FlowRepository) CreateVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, error) {
	if def == nil {
		def = models.NewDefinition()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID string

	err = tx.QueryRowContext(ctx, "SELECT id FROM flows WHERE id = $1 FOR UPDATE", flowID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = persistence.NewFlowError("CreateVersion", flowID, persistence.ErrFlowNotFound)

			return nil, err
		}

		return nil, fmt.Errorf("failed to lock flow: %w", err)
	}

	var sequence int64

	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sequence), 0) + 1 FROM flow_versions WHERE flow_id = $1",
		flowID,
	).Scan(&sequence)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next sequence: %w", err)
	}

	versionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate version ID: %w", err)
	}

	version := &models.Version{
		ID:         versionID.String(),
		Sequence:   sequence,
		Definition: def.Clone(),
		CreatedAt:  time.Now().UTC(),
	}

	if viewport != nil {
		copied := *viewport
		version.Viewport = &copied
	}

	definitionJSON, err := json.Marshal(version.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal definition: %w", err)
	}

	var viewportJSON []byte

	if version.Viewport != nil {
		viewportJSON, err = json.Marshal(version.Viewport)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal viewport: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO flow_versions (id, flow_id, sequence, definition, viewport, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		version.ID,
		flowID,
		version.Sequence,
		definitionJSON,
		viewportJSON,
		version.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert version: %w", err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE flows SET updated_at = $2 WHERE id = $1", flowID, version.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to touch flow: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return version, nil
}

// loadVersions attaches a flow's versions ordered newest first.
func (r *FlowRepository) loadVersions(ctx context.Context, flow *models.Flow) error {
	query := `
		SELECT id, sequence, definition, viewport, created_at
		FROM flow_versions
		WHERE flow_id = $1
		ORDER BY sequence DESC
	`

	rows, err := r.db.QueryContext(ctx, query, flow.ID)
	if err != nil {
		return fmt.Errorf("failed to query flow versions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	versions := make([]*models.Version, 0)

	for rows.Next() {
		var (
			version        models.Version
			definitionJSON []byte
			viewportJSON   []byte
		)

		err := rows.Scan(
			&version.ID,
			&version.Sequence,
			&definitionJSON,
			&viewportJSON,
			&version.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan version: %w", err)
		}

		err = json.Unmarshal(definitionJSON, &version.Definition)
		if err != nil {
			return fmt.Errorf("failed to unmarshal definition: %w", err)
		}

		if viewportJSON != nil {
			err = json.Unmarshal(viewportJSON, &version.Viewport)
			if err != nil {
				return fmt.Errorf("failed to unmarshal viewport: %w", err)
			}
		}

		versions = append(versions, &version)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating versions: %w", err)
	}

	flow.Versions = versions

	return nil
}
