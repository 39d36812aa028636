package persistence

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/valuation"
	"github.com/stockledger/platform/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormValuationAccountRepository implements valuation.ValuationAccountRepository using GORM.
type GormValuationAccountRepository struct {
	db *gorm.DB
}

// NewGormValuationAccountRepository creates a new GormValuationAccountRepository.
func NewGormValuationAccountRepository(db *gorm.DB) *GormValuationAccountRepository {
	return &GormValuationAccountRepository{db: db}
}

// FindByID finds an account by ID within a tenant.
func (r *GormValuationAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*valuation.ValuationAccount, error) {
	var model models.ValuationAccountModel
	if err := r.db.WithContext(ctx).
		Preload("Layers").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWarehouseAndProduct finds the account for a warehouse-product scope.
func (r *GormValuationAccountRepository) FindByWarehouseAndProduct(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*valuation.ValuationAccount, error) {
	var model models.ValuationAccountModel
	if err := r.db.WithContext(ctx).
		Preload("Layers").
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ?", tenantID, warehouseID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct finds every warehouse-scoped account for a product.
func (r *GormValuationAccountRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]valuation.ValuationAccount, error) {
	var accountModels []models.ValuationAccountModel
	query := r.db.WithContext(ctx).
		Preload("Layers").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	query = applyPagination(query, filter)

	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]valuation.ValuationAccount, len(accountModels))
	for i, m := range accountModels {
		accounts[i] = *m.ToDomain()
	}
	return accounts, nil
}

// Save creates or updates an account, replacing its FIFO layer set wholesale.
func (r *GormValuationAccountRepository) Save(ctx context.Context, account *valuation.ValuationAccount) error {
	model := models.ValuationAccountModelFromDomain(account)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("valuation_account_id = ?", model.ID).Delete(&models.CostLayerModel{}).Error; err != nil {
			return err
		}
		return tx.Save(model).Error
	})
}

// SaveWithLock persists an account using Version-1 as the expected prior
// version, mirroring GormInventoryItemRepository.SaveWithLock: domain
// mutators increment Version themselves before this is called.
func (r *GormValuationAccountRepository) SaveWithLock(ctx context.Context, account *valuation.ValuationAccount) error {
	model := models.ValuationAccountModelFromDomain(account)
	expectedVersion := model.Version - 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ValuationAccountModel{}).
			Where("id = ? AND version = ?", model.ID, expectedVersion).
			Updates(map[string]interface{}{
				"method":         model.Method,
				"total_quantity": model.TotalQuantityMinor,
				"total_value":    model.TotalValueMinor,
				"last_unit_cost": model.LastUnitCostMinor,
				"standard_cost":  model.StandardCostMinor,
				"version":        model.Version,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Where("valuation_account_id = ?", model.ID).Delete(&models.CostLayerModel{}).Error; err != nil {
			return err
		}
		if len(model.Layers) > 0 {
			if err := tx.Create(&model.Layers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an account within a tenant.
func (r *GormValuationAccountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.ValuationAccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LockForFIFOConsumption takes a session-scoped exclusive advisory lock keyed
// on (tenantID, productID) using pg_advisory_xact_lock, so it is held until
// the enclosing transaction commits or rolls back. Two concurrent deliveries
// against the same product serialize here before either reads or mutates
// FIFO layers.
func (r *GormValuationAccountRepository) LockForFIFOConsumption(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", fifoLockKey(tenantID, productID)).Error
}

// fifoLockKey derives a single int64 advisory-lock key from the
// (tenantID, productID) pair, hashing both UUIDs together so collisions
// across unrelated pairs are as unlikely as a single 64-bit hash allows.
func fifoLockKey(tenantID, productID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(tenantID[:])
	h.Write(productID[:])
	return int64(h.Sum64())
}

// Ensure GormValuationAccountRepository implements valuation.ValuationAccountRepository
var _ valuation.ValuationAccountRepository = (*GormValuationAccountRepository)(nil)

// GormValuationHistoryRepository implements valuation.ValuationHistoryRepository using GORM.
type GormValuationHistoryRepository struct {
	db *gorm.DB
}

// NewGormValuationHistoryRepository creates a new GormValuationHistoryRepository.
func NewGormValuationHistoryRepository(db *gorm.DB) *GormValuationHistoryRepository {
	return &GormValuationHistoryRepository{db: db}
}

// FindByAccount returns an account's history, newest first.
func (r *GormValuationHistoryRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]valuation.ValuationHistory, error) {
	var historyModels []models.ValuationHistoryModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND valuation_account_id = ?", tenantID, accountID).
		Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&historyModels).Error; err != nil {
		return nil, err
	}

	history := make([]valuation.ValuationHistory, len(historyModels))
	for i, m := range historyModels {
		history[i] = *m.ToDomain()
	}
	return history, nil
}

// Save appends a history row.
func (r *GormValuationHistoryRepository) Save(ctx context.Context, history *valuation.ValuationHistory) error {
	model := models.ValuationHistoryModelFromDomain(history)
	return r.db.WithContext(ctx).Create(model).Error
}

// Ensure GormValuationHistoryRepository implements valuation.ValuationHistoryRepository
var _ valuation.ValuationHistoryRepository = (*GormValuationHistoryRepository)(nil)
