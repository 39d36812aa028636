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

// GormWarehouseRepository implements warehouse.WarehouseRepository using GORM.
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository.
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by ID within a tenant.
func (r *GormWarehouseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.Warehouse, error) {
	var model models.WarehouseModel
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

// FindByCode finds a warehouse by its code within a tenant.
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*warehouse.Warehouse, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all warehouses for a tenant.
func (r *GormWarehouseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]warehouse.Warehouse, error) {
	var whModels []models.WarehouseModel
	query := applyPagination(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), filter)
	if err := query.Find(&whModels).Error; err != nil {
		return nil, err
	}
	warehouses := make([]warehouse.Warehouse, len(whModels))
	for i, m := range whModels {
		warehouses[i] = *m.ToDomain()
	}
	return warehouses, nil
}

// FindChildren finds the direct children of a warehouse.
func (r *GormWarehouseRepository) FindChildren(ctx context.Context, tenantID, parentWarehouseID uuid.UUID) ([]warehouse.Warehouse, error) {
	var whModels []models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_warehouse_id = ?", tenantID, parentWarehouseID).
		Find(&whModels).Error; err != nil {
		return nil, err
	}
	warehouses := make([]warehouse.Warehouse, len(whModels))
	for i, m := range whModels {
		warehouses[i] = *m.ToDomain()
	}
	return warehouses, nil
}

// FindParentID returns the parent warehouse ID of id, or nil if id is a root
// warehouse.
func (r *GormWarehouseRepository) FindParentID(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Select("parent_warehouse_id").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ParentWarehouseID, nil
}

// Save creates or updates a warehouse.
func (r *GormWarehouseRepository) Save(ctx context.Context, w *warehouse.Warehouse) error {
	model := models.WarehouseModelFromDomain(w)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a warehouse within a tenant.
func (r *GormWarehouseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.WarehouseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts warehouses matching the filter.
func (r *GormWarehouseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WarehouseModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a warehouse code is already in use within a tenant.
func (r *GormWarehouseRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WarehouseModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyPagination applies only the paging portion of shared.Filter; ordering
// for warehouse listings defaults to creation order.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query.Order("created_at ASC")
}

// Ensure GormWarehouseRepository implements warehouse.WarehouseRepository
var _ warehouse.WarehouseRepository = (*GormWarehouseRepository)(nil)

// GormWarehouseZoneRepository implements warehouse.WarehouseZoneRepository using GORM.
type GormWarehouseZoneRepository struct {
	db *gorm.DB
}

// NewGormWarehouseZoneRepository creates a new GormWarehouseZoneRepository.
func NewGormWarehouseZoneRepository(db *gorm.DB) *GormWarehouseZoneRepository {
	return &GormWarehouseZoneRepository{db: db}
}

// FindByID finds a zone by ID within a tenant.
func (r *GormWarehouseZoneRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.WarehouseZone, error) {
	var model models.WarehouseZoneModel
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

// FindByWarehouse finds all zones belonging to a warehouse.
func (r *GormWarehouseZoneRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]warehouse.WarehouseZone, error) {
	var zoneModels []models.WarehouseZoneModel
	query := applyPagination(
		r.db.WithContext(ctx).Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID),
		filter,
	)
	if err := query.Find(&zoneModels).Error; err != nil {
		return nil, err
	}
	zones := make([]warehouse.WarehouseZone, len(zoneModels))
	for i, m := range zoneModels {
		zones[i] = *m.ToDomain()
	}
	return zones, nil
}

// Save creates or updates a zone.
func (r *GormWarehouseZoneRepository) Save(ctx context.Context, z *warehouse.WarehouseZone) error {
	model := models.WarehouseZoneModelFromDomain(z)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a zone within a tenant.
func (r *GormWarehouseZoneRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.WarehouseZoneModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormWarehouseZoneRepository implements warehouse.WarehouseZoneRepository
var _ warehouse.WarehouseZoneRepository = (*GormWarehouseZoneRepository)(nil)

// GormWarehouseLocationRepository implements warehouse.WarehouseLocationRepository using GORM.
type GormWarehouseLocationRepository struct {
	db *gorm.DB
}

// NewGormWarehouseLocationRepository creates a new GormWarehouseLocationRepository.
func NewGormWarehouseLocationRepository(db *gorm.DB) *GormWarehouseLocationRepository {
	return &GormWarehouseLocationRepository{db: db}
}

// FindByID finds a location by ID within a tenant.
func (r *GormWarehouseLocationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*warehouse.WarehouseLocation, error) {
	var model models.WarehouseLocationModel
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

// FindByCode finds a location by its code within a warehouse.
func (r *GormWarehouseLocationRepository) FindByCode(ctx context.Context, tenantID, warehouseID uuid.UUID, code string) (*warehouse.WarehouseLocation, error) {
	var model models.WarehouseLocationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND warehouse_id = ? AND code = ?", tenantID, warehouseID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWarehouse finds all locations within a warehouse, optionally
// filtered by zone or type.
func (r *GormWarehouseLocationRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter warehouse.WarehouseLocationFilter) ([]warehouse.WarehouseLocation, error) {
	var locModels []models.WarehouseLocationModel
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID)
	if filter.ZoneID != nil {
		query = query.Where("zone_id = ?", *filter.ZoneID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&locModels).Error; err != nil {
		return nil, err
	}
	locations := make([]warehouse.WarehouseLocation, len(locModels))
	for i, m := range locModels {
		locations[i] = *m.ToDomain()
	}
	return locations, nil
}

// Save creates or updates a location.
func (r *GormWarehouseLocationRepository) Save(ctx context.Context, l *warehouse.WarehouseLocation) error {
	model := models.WarehouseLocationModelFromDomain(l)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version).
func (r *GormWarehouseLocationRepository) SaveWithLock(ctx context.Context, l *warehouse.WarehouseLocation) error {
	model := models.WarehouseLocationModelFromDomain(l)
	expectedVersion := model.Version
	model.Version++

	result := r.db.WithContext(ctx).
		Model(&models.WarehouseLocationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a location within a tenant.
func (r *GormWarehouseLocationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.WarehouseLocationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormWarehouseLocationRepository implements warehouse.WarehouseLocationRepository
var _ warehouse.WarehouseLocationRepository = (*GormWarehouseLocationRepository)(nil)
