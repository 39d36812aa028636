package persistence

import (
	"context"

	"github.com/stockledger/platform/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTenantProvider discovers active tenants by their footprint in
// inventory_items, since this substrate has no standalone tenant directory
// of its own. It feeds the replenishment sweep run by scheduler.SweepTrigger
// with the set of tenants to evaluate each tick.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetAllActiveTenantIDs returns every distinct tenant ID with at least one
// inventory item.
func (p *GormTenantProvider) GetAllActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := p.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Distinct("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}
