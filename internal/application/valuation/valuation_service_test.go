package valuation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *mockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*valuation.ValuationAccount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuation.ValuationAccount), args.Error(1)
}

func (m *mockAccountRepository) FindByWarehouseAndProduct(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*valuation.ValuationAccount, error) {
	args := m.Called(ctx, tenantID, warehouseID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuation.ValuationAccount), args.Error(1)
}

func (m *mockAccountRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]valuation.ValuationAccount, error) {
	args := m.Called(ctx, tenantID, productID, filter)
	return args.Get(0).([]valuation.ValuationAccount), args.Error(1)
}

func (m *mockAccountRepository) Save(ctx context.Context, account *valuation.ValuationAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) SaveWithLock(ctx context.Context, account *valuation.ValuationAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *mockAccountRepository) LockForFIFOConsumption(ctx context.Context, tenantID, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

type mockHistoryRepository struct {
	mock.Mock
}

func (m *mockHistoryRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]valuation.ValuationHistory, error) {
	args := m.Called(ctx, tenantID, accountID, filter)
	return args.Get(0).([]valuation.ValuationHistory), args.Error(1)
}

func (m *mockHistoryRepository) Save(ctx context.Context, history *valuation.ValuationHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func TestValuationService_RecordReceipt_CreatesAccountOnFirstCall(t *testing.T) {
	accountRepo := new(mockAccountRepository)
	historyRepo := new(mockHistoryRepository)
	svc := NewValuationService(accountRepo, historyRepo)

	tenantID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()

	accountRepo.On("FindByWarehouseAndProduct", mock.Anything, tenantID, warehouseID, productID).
		Return(nil, shared.ErrNotFound).Once()
	accountRepo.On("Save", mock.Anything, mock.AnythingOfType("*valuation.ValuationAccount")).Return(nil).Once()
	accountRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*valuation.ValuationAccount")).Return(nil).Once()
	historyRepo.On("Save", mock.Anything, mock.AnythingOfType("*valuation.ValuationHistory")).Return(nil).Once()

	history, err := svc.RecordReceipt(context.Background(), tenantID, warehouseID, productID, decimal.NewFromInt(10), decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)
	require.Equal(t, valuation.HistoryKindReceipt, history.Kind)

	accountRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
}

func TestValuationService_RecordReceipt_ReusesExistingAccount(t *testing.T) {
	accountRepo := new(mockAccountRepository)
	historyRepo := new(mockHistoryRepository)
	svc := NewValuationService(accountRepo, historyRepo)

	tenantID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()
	account, err := valuation.NewValuationAccount(tenantID, warehouseID, productID, valuation.MethodFIFO, decimal.Zero)
	require.NoError(t, err)

	accountRepo.On("FindByWarehouseAndProduct", mock.Anything, tenantID, warehouseID, productID).
		Return(account, nil).Once()
	accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil).Once()
	historyRepo.On("Save", mock.Anything, mock.AnythingOfType("*valuation.ValuationHistory")).Return(nil).Once()

	_, err = svc.RecordReceipt(context.Background(), tenantID, warehouseID, productID, decimal.NewFromInt(10), decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)

	accountRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	accountRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
}

func TestValuationService_RecordDelivery_PropagatesInsufficientStock(t *testing.T) {
	accountRepo := new(mockAccountRepository)
	historyRepo := new(mockHistoryRepository)
	svc := NewValuationService(accountRepo, historyRepo)

	tenantID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()
	account, err := valuation.NewValuationAccount(tenantID, warehouseID, productID, valuation.MethodFIFO, decimal.Zero)
	require.NoError(t, err)

	accountRepo.On("LockForFIFOConsumption", mock.Anything, tenantID, productID).Return(nil).Once()
	accountRepo.On("FindByWarehouseAndProduct", mock.Anything, tenantID, warehouseID, productID).
		Return(account, nil).Once()

	_, err = svc.RecordDelivery(context.Background(), tenantID, warehouseID, productID, decimal.NewFromInt(5))
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	accountRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestValuationService_Adjust_BooksCorrectionAgainstExistingAccount(t *testing.T) {
	accountRepo := new(mockAccountRepository)
	historyRepo := new(mockHistoryRepository)
	svc := NewValuationService(accountRepo, historyRepo)

	tenantID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()
	account, err := valuation.NewValuationAccount(tenantID, warehouseID, productID, valuation.MethodAVCO, decimal.Zero)
	require.NoError(t, err)
	_, err = account.ApplyReceipt(decimal.NewFromInt(20), decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)

	accountRepo.On("FindByWarehouseAndProduct", mock.Anything, tenantID, warehouseID, productID).
		Return(account, nil).Once()
	accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil).Once()
	historyRepo.On("Save", mock.Anything, mock.AnythingOfType("*valuation.ValuationHistory")).Return(nil).Once()

	history, err := svc.Adjust(context.Background(), tenantID, warehouseID, productID, decimal.NewFromInt(-2), decimal.NewFromInt(-10), "stock take difference")
	require.NoError(t, err)
	assert.Equal(t, valuation.HistoryKindAdjustment, history.Kind)
	assert.True(t, account.TotalQuantity.Equal(decimal.NewFromInt(18)))

	accountRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
}

func TestValuationService_SetStandardCost_RejectsNonStandardAccount(t *testing.T) {
	accountRepo := new(mockAccountRepository)
	historyRepo := new(mockHistoryRepository)
	svc := NewValuationService(accountRepo, historyRepo)

	tenantID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()
	account, err := valuation.NewValuationAccount(tenantID, warehouseID, productID, valuation.MethodFIFO, decimal.Zero)
	require.NoError(t, err)

	accountRepo.On("FindByWarehouseAndProduct", mock.Anything, tenantID, warehouseID, productID).
		Return(account, nil).Once()

	_, err = svc.SetStandardCost(context.Background(), tenantID, warehouseID, productID, decimal.NewFromInt(10))
	require.Error(t, err)

	accountRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestValuationService_RecordReceipt_PublishesDomainEvent(t *testing.T) {
	accountRepo := new(mockAccountRepository)
	historyRepo := new(mockHistoryRepository)
	svc := NewValuationService(accountRepo, historyRepo)

	publisher := &mockEventPublisher{}
	svc.SetEventPublisher(publisher)

	tenantID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()

	accountRepo.On("FindByWarehouseAndProduct", mock.Anything, tenantID, warehouseID, productID).
		Return(nil, shared.ErrNotFound).Once()
	accountRepo.On("Save", mock.Anything, mock.AnythingOfType("*valuation.ValuationAccount")).Return(nil).Once()
	accountRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*valuation.ValuationAccount")).Return(nil).Once()
	historyRepo.On("Save", mock.Anything, mock.AnythingOfType("*valuation.ValuationHistory")).Return(nil).Once()

	_, err := svc.RecordReceipt(context.Background(), tenantID, warehouseID, productID, decimal.NewFromInt(10), decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)

	events := publisher.GetEvents()
	require.Len(t, events, 1)
	assert.Equal(t, valuation.EventTypeValuationReceiptBooked, events[0].EventType())
}
