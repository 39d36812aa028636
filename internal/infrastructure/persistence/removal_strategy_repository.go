package persistence

import (
	"context"
	"errors"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/stockledger/platform/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRemovalStrategyRepository implements warehouse.RemovalStrategyRepository using GORM.
type GormRemovalStrategyRepository struct {
	db *gorm.DB
}

// NewGormRemovalStrategyRepository creates a new GormRemovalStrategyRepository.
func NewGormRemovalStrategyRepository(db *gorm.DB) *GormRemovalStrategyRepository {
	return &GormRemovalStrategyRepository{db: db}
}

// FindByID finds a strategy by ID within a tenant.
func (r *GormRemovalStrategyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.RemovalStrategy, error) {
	var model models.RemovalStrategyModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveForScope finds every active strategy whose scope could possibly
// match (warehouseID, productID): tenant-wide, warehouse-only, product-only,
// or the exact warehouse+product pair. ResolveStrategy picks the most
// specific one from the returned set.
func (r *GormRemovalStrategyRepository) FindActiveForScope(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) ([]warehouse.RemovalStrategy, error) {
	var strategyModels []models.RemovalStrategyModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = TRUE", tenantID).
		Where(
			"(warehouse_id IS NULL OR warehouse_id = ?) AND (product_id IS NULL OR product_id = ?)",
			warehouseID, productID,
		).
		Find(&strategyModels).Error; err != nil {
		return nil, err
	}
	strategies := make([]warehouse.RemovalStrategy, len(strategyModels))
	for i, m := range strategyModels {
		strategies[i] = *m.ToDomain()
	}
	return strategies, nil
}

// Save creates or updates a strategy.
func (r *GormRemovalStrategyRepository) Save(ctx context.Context, strategy *warehouse.RemovalStrategy) error {
	model := models.RemovalStrategyModelFromDomain(strategy)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a strategy within a tenant.
func (r *GormRemovalStrategyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.RemovalStrategyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormRemovalStrategyRepository implements warehouse.RemovalStrategyRepository
var _ warehouse.RemovalStrategyRepository = (*GormRemovalStrategyRepository)(nil)
