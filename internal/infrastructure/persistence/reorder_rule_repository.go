package persistence

import (
	"context"
	"errors"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReorderRuleRepository implements inventory.ReorderRuleRepository using GORM.
type GormReorderRuleRepository struct {
	db *gorm.DB
}

// NewGormReorderRuleRepository creates a new GormReorderRuleRepository.
func NewGormReorderRuleRepository(db *gorm.DB) *GormReorderRuleRepository {
	return &GormReorderRuleRepository{db: db}
}

// FindByID finds a reorder rule by ID within a tenant.
func (r *GormReorderRuleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.ReorderRule, error) {
	var model models.ReorderRuleModel
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

// FindActiveForTenant finds every active reorder rule for a tenant.
func (r *GormReorderRuleRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.ReorderRule, error) {
	var ruleModels []models.ReorderRuleModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = TRUE", tenantID).
		Order("created_at ASC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]inventory.ReorderRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// FindActiveByProduct finds every active reorder rule scoped to a product,
// across all its warehouses.
func (r *GormReorderRuleRepository) FindActiveByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.ReorderRule, error) {
	var ruleModels []models.ReorderRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND active = TRUE", tenantID, productID).
		Order("created_at ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]inventory.ReorderRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// Save creates or updates a reorder rule.
func (r *GormReorderRuleRepository) Save(ctx context.Context, rule *inventory.ReorderRule) error {
	model := models.ReorderRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a reorder rule.
func (r *GormReorderRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.ReorderRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormReorderRuleRepository implements inventory.ReorderRuleRepository
var _ inventory.ReorderRuleRepository = (*GormReorderRuleRepository)(nil)
