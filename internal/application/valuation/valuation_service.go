package valuation

import (
	"context"
	"errors"
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValuationService orchestrates the Valuation Engine (§4.E): it loads or
// lazily creates the ValuationAccount for a warehouse/product scope,
// applies the requested transition, persists the updated account under
// optimistic-lock protection, and appends the resulting history row.
type ValuationService struct {
	accountRepo    valuation.ValuationAccountRepository
	historyRepo    valuation.ValuationHistoryRepository
	eventPublisher shared.EventPublisher
}

// NewValuationService creates a new ValuationService.
func NewValuationService(accountRepo valuation.ValuationAccountRepository, historyRepo valuation.ValuationHistoryRepository) *ValuationService {
	return &ValuationService{accountRepo: accountRepo, historyRepo: historyRepo}
}

// SetEventPublisher wires an optional event publisher, matching the
// inventory service's SetEventPublisher idiom.
func (s *ValuationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetOrCreateAccount returns the existing account for a warehouse/product
// scope, or creates one under the given method if none exists yet.
func (s *ValuationService) GetOrCreateAccount(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, defaultMethod valuation.Method) (*valuation.ValuationAccount, error) {
	account, err := s.accountRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	account, err = valuation.NewValuationAccount(tenantID, warehouseID, productID, defaultMethod, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// RecordReceipt books a receipt against the account and persists both the
// updated account and the resulting history row.
func (s *ValuationService) RecordReceipt(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, qty, unitCost decimal.Decimal, receivedAt time.Time) (*valuation.ValuationHistory, error) {
	account, err := s.GetOrCreateAccount(ctx, tenantID, warehouseID, productID, valuation.MethodAVCO)
	if err != nil {
		return nil, err
	}

	history, err := account.ApplyReceipt(qty, unitCost, receivedAt)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, account)
	return history, nil
}

// RecordDelivery books a delivery against the account and persists both the
// updated account and the resulting history row.
func (s *ValuationService) RecordDelivery(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, qty decimal.Decimal) (*valuation.ValuationHistory, error) {
	if err := s.accountRepo.LockForFIFOConsumption(ctx, tenantID, productID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	history, err := account.ApplyDelivery(qty)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, account)
	return history, nil
}

// Revalue adjusts the running unit cost for an account without changing its
// quantity.
func (s *ValuationService) Revalue(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, newUnitCost decimal.Decimal) (*valuation.ValuationHistory, error) {
	account, err := s.accountRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	history, err := account.Revalue(newUnitCost, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, account)
	return history, nil
}

// SwitchMethod changes an account's costing method, per §4.E only
// permitted on a committed snapshot (the account as currently persisted).
func (s *ValuationService) SwitchMethod(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, newMethod valuation.Method) (*valuation.ValuationHistory, error) {
	account, err := s.accountRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	history, err := account.SwitchMethod(newMethod, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, account)
	return history, nil
}

// Adjust books a direct quantity/value correction against an account,
// e.g. a stock taking difference or manual adjustment line that must also
// correct valuation, not just quantity.
func (s *ValuationService) Adjust(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, qtyDelta, valueDelta decimal.Decimal, reason string) (*valuation.ValuationHistory, error) {
	account, err := s.accountRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	history, err := account.Adjust(qtyDelta, valueDelta, reason, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, account)
	return history, nil
}

// SetStandardCost updates an account's standard cost in place, with no
// quantity/value side effects — a dedicated narrower operation than
// SwitchMethod for correcting the standard figure on an account already
// under MethodStandard.
func (s *ValuationService) SetStandardCost(ctx context.Context, tenantID, warehouseID, productID uuid.UUID, newStandardCost decimal.Decimal) (*valuation.ValuationAccount, error) {
	account, err := s.accountRepo.FindByWarehouseAndProduct(ctx, tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if account.Method != valuation.MethodStandard {
		return nil, shared.NewDomainError("INVALID_METHOD", "Standard cost only applies to accounts under the standard costing method")
	}
	if newStandardCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Standard cost cannot be negative")
	}

	account.StandardCost = newStandardCost
	account.IncrementVersion()
	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetByProduct returns every warehouse-scoped account for a product.
func (s *ValuationService) GetByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]valuation.ValuationAccount, error) {
	return s.accountRepo.FindByProduct(ctx, tenantID, productID, filter)
}

// GetLayers returns the open FIFO cost layers for an account. Empty for
// accounts not under MethodFIFO.
func (s *ValuationService) GetLayers(ctx context.Context, tenantID, accountID uuid.UUID) ([]valuation.CostLayer, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	return account.Layers, nil
}

// publishDomainEvents drains and publishes the account's pending domain
// events after a successful save, mirroring InventoryService's
// publish-then-clear idiom.
func (s *ValuationService) publishDomainEvents(ctx context.Context, account *valuation.ValuationAccount) {
	if s.eventPublisher == nil {
		return
	}
	events := account.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	account.ClearDomainEvents()
}

// GetHistory returns an account's audit trail, newest first.
func (s *ValuationService) GetHistory(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]valuation.ValuationHistory, error) {
	return s.historyRepo.FindByAccount(ctx, tenantID, accountID, filter)
}
