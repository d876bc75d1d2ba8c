package mocks

import (
	"context"

	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockFlowRepository is a mock implementation of persistence.FlowRepository interface.
type MockFlowRepository struct {
	mock.Mock
}

func (m *MockFlowRepository) ListFlows(ctx context.Context, opts persistence.ListFlowsOptions) (*persistence.FlowListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.FlowListResult), args.Error(1)
}

func (m *MockFlowRepository) GetByID(ctx context.Context, flowID string) (*models.Flow, error) {
	args := m.Called(ctx, flowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Flow), args.Error(1)
}

func (m *MockFlowRepository) Create(ctx context.Context, flow *models.Flow) error {
	args := m.Called(ctx, flow)

	return args.Error(0)
}

func (m *MockFlowRepository) UpdateMetadata(ctx context.Context, flow *models.Flow) error {
	args := m.Called(ctx, flow)

	return args.Error(0)
}

func (m *MockFlowRepository) Delete(ctx context.Context, flowID string) error {
	args := m.Called(ctx, flowID)

	return args.Error(0)
}

func (m *MockFlowRepository) CreateVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, error) {
	args := m.Called(ctx, flowID, def, viewport)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Version), args.Error(1)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	flowRepo *MockFlowRepository
}

// NewMockPersistence creates a new MockPersistence with a mock flow repository.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		flowRepo: &MockFlowRepository{},
	}
}

// GetMockFlowRepository returns the underlying mock flow repository for setting up expectations.
func (m *MockPersistence) GetMockFlowRepository() *MockFlowRepository {
	return m.flowRepo
}

func (m *MockPersistence) FlowRepository() persistence.FlowRepository {
	return m.flowRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
