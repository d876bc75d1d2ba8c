package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/persistence"
)

// FlowRepository handles flow-related file operations. A single mutex
// serializes every write so version sequence numbers stay strictly
// increasing even under concurrent saves.
type FlowRepository struct {
	root string // File system root for storing flows
	mu   sync.Mutex
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(root string) *FlowRepository {
	return &FlowRepository{root: root}
}

// ListFlows returns paginated and filtered flows with in-memory operations.
func (fr *FlowRepository) ListFlows(ctx context.Context, opts persistence.ListFlowsOptions) (*persistence.FlowListResult, error) {
	// Set defaults
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

	// Get all flows from filesystem
	root := os.DirFS(fr.root + "/flows")

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	if len(jsonFiles) == 0 {
		return &persistence.FlowListResult{
			Flows:       make([]*models.Flow, 0),
			TotalCount:  0,
			HasNextPage: false,
		}, nil
	}

	// Load all flows
	allFlows := make([]*models.Flow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		flowID := file[:len(file)-5] // Remove .json extension

		flow, err := fr.GetByID(ctx, flowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow %s: %w", flowID, err)
		}

		if flow != nil {
			allFlows = append(allFlows, flow)
		}
	}

	// Apply filtering
	filteredFlows := make([]*models.Flow, 0)

	for _, flow := range allFlows {
		if opts.Status != nil && flow.Status != *opts.Status {
			continue
		}

		filteredFlows = append(filteredFlows, flow)
	}

	// Apply sorting
	fr.sortFlows(filteredFlows, opts.SortBy, opts.SortOrder)

	// Calculate pagination
	totalCount := int64(len(filteredFlows))
	startIdx := opts.Offset
	endIdx := opts.Offset + opts.Limit

	if startIdx >= len(filteredFlows) {
		return &persistence.FlowListResult{
			Flows:       make([]*models.Flow, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	if endIdx > len(filteredFlows) {
		endIdx = len(filteredFlows)
	}

	paginatedFlows := filteredFlows[startIdx:endIdx]
	hasNextPage := endIdx < len(filteredFlows)

	if !opts.IncludeVersions {
		for _, flow := range paginatedFlows {
			flow.Versions = nil
		}
	}

	return &persistence.FlowListResult{
		Flows:       paginatedFlows,
		TotalCount:  totalCount,
		HasNextPage: hasNextPage,
	}, nil
}

// sortFlows sorts flows in-place based on the specified field and order.
func (fr *FlowRepository) sortFlows(flows []*models.Flow, sortBy, sortOrder string) {
	sort.Slice(flows, func(i, j int) bool {
		var less bool

		switch sortBy {
		case "created_at":
			less = flows[i].CreatedAt.Before(flows[j].CreatedAt)
		case "updated_at":
			less = flows[i].UpdatedAt.Before(flows[j].UpdatedAt)
		case "name":
			less = flows[i].Name < flows[j].Name
		default:
			less = flows[i].CreatedAt.Before(flows[j].CreatedAt)
		}

		if sortOrder == "desc" {
			return !less
		}

		return less
	})
}

// GetByID retrieves a flow by its ID from the file system, with its
// versions ordered newest first. Returns nil when the flow is unknown.
func (fr *FlowRepository) GetByID(_ context.Context, flowID string) (*models.Flow, error) {
	filePath := filepath.Clean(path.Join(fr.root, "flows", flowID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch flow %s: %w", flowID, err)
	}

	var flow models.Flow

	err = json.Unmarshal(body, &flow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow %s: %w", flowID, err)
	}

	sortVersionsNewestFirst(&flow)

	return &flow, nil
}

// Create stores a new flow container.
func (fr *FlowRepository) Create(ctx context.Context, flow *models.Flow) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	existing, err := fr.GetByID(ctx, flow.ID)
	if err != nil {
		return err
	}

	if existing != nil {
		return persistence.NewFlowError("Create", flow.ID, persistence.ErrFlowAlreadyExists)
	}

	now := time.Now().UTC()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	return fr.write(flow)
}

// UpdateMetadata updates name, description and status of an existing
// flow. The stored version history is carried over untouched.
func (fr *FlowRepository) UpdateMetadata(ctx context.Context, flow *models.Flow) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	existing, err := fr.GetByID(ctx, flow.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		return persistence.NewFlowError("UpdateMetadata", flow.ID, persistence.ErrFlowNotFound)
	}

	existing.Name = flow.Name
	existing.Description = flow.Description
	existing.Status = flow.Status
	existing.UpdatedAt = time.Now().UTC()

	return fr.write(existing)
}

// Delete removes a flow and all of its versions.
func (fr *FlowRepository) Delete(_ context.Context, id string) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	filePath := path.Join(fr.root+"/flows", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete flow %s: %w", id, err)
	}

	return nil
}

// CreateVersion appends an immutable snapshot to the flow's history.
// The definition is deep-copied, the sequence is one above the current
// latest, and versions already stored are never rewritten.
func (fr *FlowRepository) CreateVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	flow, err := fr.GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	if flow == nil {
		return nil, persistence.NewFlowError("CreateVersion", flowID, persistence.ErrFlowNotFound)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate version ID: %w", err)
	}

	version := &models.Version{
		ID:        id.String(),
		Sequence:  flow.NextSequence(),
		CreatedAt: time.Now().UTC(),
	}

	if def != nil {
		version.Definition = def.Clone()
	} else {
		version.Definition = models.NewDefinition()
	}

	if viewport != nil {
		copied := *viewport
		version.Viewport = &copied
	}

	flow.Versions = append([]*models.Version{version}, flow.Versions...)
	flow.UpdatedAt = version.CreatedAt

	if err := fr.write(flow); err != nil {
		return nil, err
	}

	return version, nil
}

// write persists the flow document to disk.
func (fr *FlowRepository) write(flow *models.Flow) error {
	err := os.MkdirAll(fr.root+"/flows", 0750)
	if err != nil {
		return fmt.Errorf("failed to create flows directory: %w", err)
	}

	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flow %s: %w", flow.ID, err)
	}

	filePath := path.Join(fr.root+"/flows", flow.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

func sortVersionsNewestFirst(flow *models.Flow) {
	sort.Slice(flow.Versions, func(i, j int) bool {
		return flow.Versions[i].Sequence > flow.Versions[j].Sequence
	})
}
