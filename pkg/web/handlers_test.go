package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/persistence/file"
	"github.com/dialvox/ivrflow/pkg/registry"
	"github.com/dialvox/ivrflow/pkg/services"
	"github.com/dialvox/ivrflow/pkg/session"
	"github.com/dialvox/ivrflow/pkg/web"
)

func stringPtr(s string) *string {
	return &s
}

func setupTestHandlers(t *testing.T) (*web.APIHandlers, *services.Flow) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	persistence := file.NewPersistence(t.TempDir())
	registryInstance := registry.NewRegistry(logger)
	flowService := services.NewFlow(persistence, registryInstance, nil, logger)
	sessionManager := session.NewManager(flowService, logger, 0)
	validator := validator.New(validator.WithRequiredStructEnabled())

	handlers := web.NewAPIHandlers(flowService, sessionManager, validator, registryInstance)

	return handlers, flowService
}

func setupTestApp(t *testing.T) (*fiber.App, *services.Flow) {
	t.Helper()

	handlers, flowService := setupTestHandlers(t)
	app := fiber.New()

	f := app.Group("/flows")
	f.Get("/", handlers.GetFlows)
	f.Post("/", handlers.CreateFlow)
	f.Get("/:id", handlers.GetFlow)
	f.Patch("/:id", handlers.UpdateFlow)
	f.Delete("/:id", handlers.DeleteFlow)
	f.Get("/:id/versions", handlers.GetFlowVersions)
	f.Post("/:id/versions", handlers.CreateFlowVersion)
	f.Get("/:id/versions/:sequence", handlers.GetFlowVersion)
	f.Post("/:id/sessions", handlers.CreateSession)

	s := app.Group("/sessions")
	s.Get("/:sid", handlers.GetSession)
	s.Delete("/:sid", handlers.CloseSession)
	s.Post("/:sid/nodes", handlers.AddSessionNode)
	s.Delete("/:sid/nodes/:nodeId", handlers.RemoveSessionNode)
	s.Post("/:sid/edges", handlers.AddSessionEdge)
	s.Put("/:sid/start-node", handlers.SetSessionStartNode)
	s.Put("/:sid/viewport", handlers.SetSessionViewport)
	s.Post("/:sid/undo", handlers.UndoSession)
	s.Post("/:sid/redo", handlers.RedoSession)
	s.Post("/:sid/save", handlers.SaveSession)

	app.Post("/definitions/validate", handlers.ValidateDefinition)
	app.Get("/node-kinds", handlers.GetNodeKinds)
	app.Get("/health", handlers.HealthCheck)

	return app, flowService
}

// callableDefinition builds a definition that passes every hard check:
// a start node wired to a hang-up node.
func callableDefinition() *models.Definition {
	return &models.Definition{
		Nodes: []*models.Node{
			{ID: "n-start", Kind: models.NodeKindStart, Name: "Entry"},
			{ID: "n-bye", Kind: models.NodeKindHangUp, Name: "Good Bye"},
		},
		Edges: []*models.Edge{
			{ID: "e-1", Source: "n-start", Target: "n-bye"},
		},
		StartNode: "n-start",
	}
}

func createTestFlow(t *testing.T, flowService *services.Flow, name string) *models.Flow {
	t.Helper()

	created, err := flowService.Create(context.Background(), services.CreateFlowRequest{
		Name:        name,
		Description: "Test Description",
	})
	require.NoError(t, err)

	return created
}

func TestAPIHandlers_CreateFlow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name: "successful creation defaults to draft",
			requestBody: web.CreateFlowRequest{
				Name:        "Support Line",
				Description: "After hours support",
			},
			expectedStatus: http.StatusCreated,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var flowRecord models.Flow
				err := json.Unmarshal(body, &flowRecord)
				require.NoError(t, err)
				assert.Equal(t, "Support Line", flowRecord.Name)
				assert.Equal(t, "After hours support", flowRecord.Description)
				assert.Equal(t, models.FlowStatusDraft, flowRecord.Status)
				assert.Empty(t, flowRecord.Versions)
				assert.NotEmpty(t, flowRecord.ID)
			},
		},
		{
			name: "successful creation with explicit status",
			requestBody: web.CreateFlowRequest{
				Name:   "Billing Line",
				Status: "active",
			},
			expectedStatus: http.StatusCreated,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var flowRecord models.Flow
				err := json.Unmarshal(body, &flowRecord)
				require.NoError(t, err)
				assert.Equal(t, models.FlowStatusActive, flowRecord.Status)
			},
		},
		{
			name: "validation error - missing name",
			requestBody: web.CreateFlowRequest{
				Description: "Test Description",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "validation error - name too short",
			requestBody: web.CreateFlowRequest{
				Name: "Te",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "validation error - unknown status",
			requestBody: web.CreateFlowRequest{
				Name:   "Support Line",
				Status: "published",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			var (
				body []byte
				err  error
			)

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/flows", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated && tt.validateResult != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_GetFlow(t *testing.T) {
	t.Parallel()

	app, flowService := setupTestApp(t)
	created := createTestFlow(t, flowService, "Support Line")

	tests := []struct {
		name           string
		flowID         string
		expectedStatus int
	}{
		{
			name:           "existing flow",
			flowID:         created.ID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "flow not found",
			flowID:         "non-existent-id",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/flows/"+tt.flowID, nil)

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var flowRecord models.Flow
				err := json.NewDecoder(resp.Body).Decode(&flowRecord)
				require.NoError(t, err)
				assert.Equal(t, created.ID, flowRecord.ID)
				assert.Equal(t, "Support Line", flowRecord.Name)
			}
		})
	}
}

func TestAPIHandlers_UpdateFlow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupFlow      bool
		requestBody    interface{}
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name:      "successful partial update - name only",
			setupFlow: true,
			requestBody: web.UpdateFlowRequest{
				Name: stringPtr("Renamed Line"),
			},
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var flowRecord models.Flow
				err := json.Unmarshal(body, &flowRecord)
				require.NoError(t, err)
				assert.Equal(t, "Renamed Line", flowRecord.Name)
				assert.Equal(t, "Test Description", flowRecord.Description) // unchanged
				assert.Equal(t, models.FlowStatusDraft, flowRecord.Status)  // unchanged
			},
		},
		{
			name:      "successful partial update - multiple fields",
			setupFlow: true,
			requestBody: web.UpdateFlowRequest{
				Name:        stringPtr("Renamed Line"),
				Description: stringPtr("Updated description"),
				Status:      stringPtr("active"),
			},
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var flowRecord models.Flow
				err := json.Unmarshal(body, &flowRecord)
				require.NoError(t, err)
				assert.Equal(t, "Renamed Line", flowRecord.Name)
				assert.Equal(t, "Updated description", flowRecord.Description)
				assert.Equal(t, models.FlowStatusActive, flowRecord.Status)
			},
		},
		{
			name:           "flow not found",
			setupFlow:      false,
			requestBody:    web.UpdateFlowRequest{Name: stringPtr("New Name")},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:      "validation error - name too short",
			setupFlow: true,
			requestBody: web.UpdateFlowRequest{
				Name: stringPtr("Te"),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty update request",
			setupFlow:      true,
			requestBody:    web.UpdateFlowRequest{},
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var flowRecord models.Flow
				err := json.Unmarshal(body, &flowRecord)
				require.NoError(t, err)
				assert.Equal(t, "Original Line", flowRecord.Name)           // unchanged
				assert.Equal(t, "Test Description", flowRecord.Description) // unchanged
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, flowService := setupTestApp(t)

			flowID := "non-existent-id"

			if tt.setupFlow {
				created := createTestFlow(t, flowService, "Original Line")
				flowID = created.ID
			}

			body, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPatch, "/flows/"+flowID, bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK && tt.validateResult != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_UpdateFlowNeverTouchesVersions(t *testing.T) {
	t.Parallel()

	app, flowService := setupTestApp(t)
	created := createTestFlow(t, flowService, "Support Line")

	_, _, err := flowService.SaveVersion(context.Background(), created.ID, callableDefinition(), nil)
	require.NoError(t, err)

	body, err := json.Marshal(web.UpdateFlowRequest{Name: stringPtr("Renamed Line")})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/flows/"+created.ID, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	after, err := flowService.FetchByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Line", after.Name)
	require.Len(t, after.Versions, 1)
	assert.Equal(t, int64(1), after.Versions[0].Sequence)
}

func TestAPIHandlers_DeleteFlow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupFlow      bool
		expectedStatus int
	}{
		{
			name:           "successful deletion",
			setupFlow:      true,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "flow not found",
			setupFlow:      false,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, flowService := setupTestApp(t)

			flowID := "non-existent-id"

			if tt.setupFlow {
				created := createTestFlow(t, flowService, "Doomed Line")
				flowID = created.ID
			}

			req := httptest.NewRequest(http.MethodDelete, "/flows/"+flowID, nil)

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusNoContent {
				_, err := flowService.FetchByID(context.Background(), flowID)
				require.Error(t, err)
				assert.ErrorIs(t, err, services.ErrFlowNotFound)
			}
		})
	}
}

func TestAPIHandlers_GetFlows(t *testing.T) {
	t.Parallel()

	app, flowService := setupTestApp(t)

	createTestFlow(t, flowService, "Alpha Line")
	createTestFlow(t, flowService, "Beta Line")
	active := createTestFlow(t, flowService, "Gamma Line")

	_, err := flowService.UpdateMetadata(context.Background(), active.ID, services.UpdateFlowRequest{
		Name:   active.Name,
		Status: models.FlowStatusActive,
	})
	require.NoError(t, err)

	type listResponse struct {
		Flows       []*models.Flow `json:"flows"`
		TotalCount  int64          `json:"total_count"`
		HasNextPage bool           `json:"has_next_page"`
	}

	tests := []struct {
		name           string
		url            string
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "all flows",
			url:            "/flows",
			expectedStatus: http.StatusOK,
			expectedCount:  3,
		},
		{
			name:           "filter by status",
			url:            "/flows?status=active",
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "pagination limits the page",
			url:            "/flows?limit=2&offset=0",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "invalid limit",
			url:            "/flows?limit=banana",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid sort field",
			url:            "/flows?sort_by=color",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid status",
			url:            "/flows?status=published",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.Header.Set("Accept", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var response listResponse
				err = json.NewDecoder(resp.Body).Decode(&response)
				require.NoError(t, err)

				assert.Len(t, response.Flows, tt.expectedCount)
			}
		})
	}
}

func TestAPIHandlers_CreateFlowVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupFlow      bool
		requestBody    interface{}
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name:      "successful version creation",
			setupFlow: true,
			requestBody: web.CreateVersionRequest{
				Definition: callableDefinition(),
				Viewport:   &models.Viewport{X: 12, Y: -4, Zoom: 1.25},
			},
			expectedStatus: http.StatusCreated,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var response struct {
					Version    *models.Version        `json:"version"`
					Validation *flow.ValidationResult `json:"validation"`
				}

				err := json.Unmarshal(body, &response)
				require.NoError(t, err)
				require.NotNil(t, response.Version)
				assert.Equal(t, int64(1), response.Version.Sequence)
				assert.Equal(t, "n-start", response.Version.Definition.StartNode)
				require.NotNil(t, response.Version.Viewport)
				assert.InEpsilon(t, 1.25, response.Version.Viewport.Zoom, 0.0001)
				require.NotNil(t, response.Validation)
				assert.Empty(t, response.Validation.Errors)
			},
		},
		{
			name:      "hard validation error rejects the save",
			setupFlow: true,
			requestBody: web.CreateVersionRequest{
				Definition: &models.Definition{
					Nodes: []*models.Node{
						{ID: "n-start", Kind: models.NodeKindStart},
					},
					Edges: []*models.Edge{
						{ID: "e-1", Source: "n-start", Target: "n-ghost"},
					},
					StartNode: "n-start",
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "flow not found",
			setupFlow: false,
			requestBody: web.CreateVersionRequest{
				Definition: callableDefinition(),
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing definition",
			setupFlow:      true,
			requestBody:    web.CreateVersionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			setupFlow:      true,
			requestBody:    "invalid-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, flowService := setupTestApp(t)

			flowID := "non-existent-id"

			if tt.setupFlow {
				created := createTestFlow(t, flowService, "Support Line")
				flowID = created.ID
			}

			var (
				body []byte
				err  error
			)

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/flows/"+flowID+"/versions", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated && tt.validateResult != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_GetFlowVersions(t *testing.T) {
	t.Parallel()

	app, flowService := setupTestApp(t)
	created := createTestFlow(t, flowService, "Support Line")

	_, _, err := flowService.SaveVersion(context.Background(), created.ID, callableDefinition(), nil)
	require.NoError(t, err)

	second := callableDefinition()
	second.Nodes[1].Name = "Good Bye v2"
	_, _, err = flowService.SaveVersion(context.Background(), created.ID, second, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/flows/"+created.ID+"/versions", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var response struct {
		FlowID   string            `json:"flow_id"`
		Versions []*models.Version `json:"versions"`
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, created.ID, response.FlowID)
	require.Len(t, response.Versions, 2)
	assert.Equal(t, int64(2), response.Versions[0].Sequence) // newest first
	assert.Equal(t, int64(1), response.Versions[1].Sequence)
}

func TestAPIHandlers_GetFlowVersion(t *testing.T) {
	t.Parallel()

	app, flowService := setupTestApp(t)
	created := createTestFlow(t, flowService, "Support Line")

	_, _, err := flowService.SaveVersion(context.Background(), created.ID, callableDefinition(), nil)
	require.NoError(t, err)

	tests := []struct {
		name           string
		sequence       string
		expectedStatus int
	}{
		{
			name:           "existing version",
			sequence:       "1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown sequence",
			sequence:       "42",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "non-numeric sequence",
			sequence:       "latest",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/flows/"+created.ID+"/versions/"+tt.sequence, nil)

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var version models.Version
				err := json.NewDecoder(resp.Body).Decode(&version)
				require.NoError(t, err)
				assert.Equal(t, int64(1), version.Sequence)
			}
		})
	}
}

func TestAPIHandlers_ValidateDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		requestBody   interface{}
		expectedValid bool
	}{
		{
			name: "callable definition is valid",
			requestBody: web.ValidateDefinitionRequest{
				Definition: callableDefinition(),
			},
			expectedValid: true,
		},
		{
			name: "empty definition is valid with warnings",
			requestBody: web.ValidateDefinitionRequest{
				Definition: models.NewDefinition(),
			},
			expectedValid: true,
		},
		{
			name: "dangling edge is a hard error",
			requestBody: web.ValidateDefinitionRequest{
				Definition: &models.Definition{
					Nodes: []*models.Node{
						{ID: "n-start", Kind: models.NodeKindStart},
					},
					Edges: []*models.Edge{
						{ID: "e-1", Source: "n-start", Target: "n-ghost"},
					},
				},
			},
			expectedValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			body, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/definitions/validate", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var response struct {
				Valid bool `json:"valid"`
			}

			err = json.NewDecoder(resp.Body).Decode(&response)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValid, response.Valid)
		})
	}
}

func TestAPIHandlers_GetNodeKinds(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/node-kinds", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var response struct {
		NodeKinds []*models.RegisteredNodeKind `json:"node_kinds"`
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)
	assert.NotEmpty(t, response.NodeKinds)

	kinds := make([]models.NodeKind, 0, len(response.NodeKinds))
	for _, kind := range response.NodeKinds {
		kinds = append(kinds, kind.Kind)
	}

	assert.Contains(t, kinds, models.NodeKindStart)
	assert.Contains(t, kinds, models.NodeKindPlayAudio)
	assert.Contains(t, kinds, models.NodeKindHangUp)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var response struct {
		Status   string            `json:"status"`
		Message  string            `json:"message"`
		Checkers map[string]string `json:"checkers"`
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response.Status)
	assert.Contains(t, response.Checkers, "registry")
	assert.Contains(t, response.Checkers, "repository")
}
