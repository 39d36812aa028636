package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRemovalStrategyRepository struct{ mock.Mock }

func (m *mockRemovalStrategyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.RemovalStrategy, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehouse.RemovalStrategy), args.Error(1)
}

func (m *mockRemovalStrategyRepository) FindActiveForScope(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) ([]warehouse.RemovalStrategy, error) {
	args := m.Called(ctx, tenantID, warehouseID, productID)
	return args.Get(0).([]warehouse.RemovalStrategy), args.Error(1)
}

func (m *mockRemovalStrategyRepository) Save(ctx context.Context, s *warehouse.RemovalStrategy) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRemovalStrategyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func TestRemovalService_BuildPlan_ResolvesStrategyAndAllocates(t *testing.T) {
	strategyRepo := new(mockRemovalStrategyRepository)

	tenantID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	strategy, err := warehouse.NewRemovalStrategy(tenantID, warehouse.RemovalStrategyFIFO, 10)
	require.NoError(t, err)
	strategy.WarehouseID = &warehouseID

	strategyRepo.On("FindActiveForScope", mock.Anything, tenantID, warehouseID, productID).
		Return([]warehouse.RemovalStrategy{*strategy}, nil)

	older := warehouse.RemovalCandidate{
		LocationID: uuid.New(), LocationCode: "A-1",
		AvailableQuantity: 5, ReceiptTime: time.Now().Add(-48 * time.Hour),
	}
	newer := warehouse.RemovalCandidate{
		LocationID: uuid.New(), LocationCode: "A-2",
		AvailableQuantity: 10, ReceiptTime: time.Now().Add(-1 * time.Hour),
	}

	svc := NewRemovalService(strategyRepo, nil)
	plan, err := svc.BuildPlan(context.Background(), tenantID, warehouseID, productID,
		warehouse.Coordinates{}, 8, []warehouse.RemovalCandidate{newer, older})

	require.NoError(t, err)
	assert.True(t, plan.CanFulfill)
	require.Len(t, plan.Lines, 1)
	assert.Equal(t, "A-1", plan.Lines[0].Location.LocationCode)
	assert.Equal(t, int64(8), plan.Lines[0].SuggestedQuantity)
}

func TestRemovalService_BuildPlan_NoStrategyResolves(t *testing.T) {
	strategyRepo := new(mockRemovalStrategyRepository)

	tenantID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	strategyRepo.On("FindActiveForScope", mock.Anything, tenantID, warehouseID, productID).
		Return([]warehouse.RemovalStrategy{}, nil)

	svc := NewRemovalService(strategyRepo, nil)
	_, err := svc.BuildPlan(context.Background(), tenantID, warehouseID, productID, warehouse.Coordinates{}, 5, nil)

	require.Error(t, err)
}
