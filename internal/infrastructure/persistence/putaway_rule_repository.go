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

// GormPutawayRuleRepository implements warehouse.PutawayRuleRepository using GORM.
type GormPutawayRuleRepository struct {
	db *gorm.DB
}

// NewGormPutawayRuleRepository creates a new GormPutawayRuleRepository.
func NewGormPutawayRuleRepository(db *gorm.DB) *GormPutawayRuleRepository {
	return &GormPutawayRuleRepository{db: db}
}

// FindByID finds a rule by ID within a tenant.
func (r *GormPutawayRuleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.PutawayRule, error) {
	var model models.PutawayRuleModel
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

// FindActiveForTenant finds every active rule for a tenant.
func (r *GormPutawayRuleRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]warehouse.PutawayRule, error) {
	var ruleModels []models.PutawayRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = TRUE", tenantID).
		Order("priority_score DESC, created_at ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	rules := make([]warehouse.PutawayRule, len(ruleModels))
	for i, m := range ruleModels {
		rules[i] = *m.ToDomain()
	}
	return rules, nil
}

// Save creates or updates a rule.
func (r *GormPutawayRuleRepository) Save(ctx context.Context, rule *warehouse.PutawayRule) error {
	model := models.PutawayRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a rule within a tenant.
func (r *GormPutawayRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.PutawayRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPutawayRuleRepository implements warehouse.PutawayRuleRepository
var _ warehouse.PutawayRuleRepository = (*GormPutawayRuleRepository)(nil)
