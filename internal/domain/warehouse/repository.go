package warehouse

import (
	"context"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseRepository defines the interface for warehouse persistence.
type WarehouseRepository interface {
	// FindByID finds a warehouse by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Warehouse, error)

	// FindByCode finds a warehouse by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Warehouse, error)

	// FindAllForTenant finds all warehouses for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Warehouse, error)

	// FindChildren finds the direct children of a warehouse
	FindChildren(ctx context.Context, tenantID, parentWarehouseID uuid.UUID) ([]Warehouse, error)

	// FindParentID returns the parent warehouse ID of id, or nil if id is a
	// root warehouse. Used by ValidateNoCycle to walk the persisted tree
	// without the domain layer depending on a store.
	FindParentID(ctx context.Context, id uuid.UUID) (*uuid.UUID, error)

	// Save creates or updates a warehouse
	Save(ctx context.Context, w *Warehouse) error

	// Delete deletes a warehouse within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts warehouses matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a warehouse code is already in use within a tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}

// WarehouseZoneRepository defines the interface for warehouse zone persistence.
type WarehouseZoneRepository interface {
	// FindByID finds a zone by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*WarehouseZone, error)

	// FindByWarehouse finds all zones belonging to a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]WarehouseZone, error)

	// Save creates or updates a zone
	Save(ctx context.Context, z *WarehouseZone) error

	// Delete deletes a zone within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// WarehouseLocationFilter extends shared.Filter with location-specific filters.
type WarehouseLocationFilter struct {
	shared.Filter
	ZoneID *uuid.UUID
	Type   *LocationType
}

// WarehouseLocationRepository defines the interface for warehouse location
// persistence.
type WarehouseLocationRepository interface {
	// FindByID finds a location by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*WarehouseLocation, error)

	// FindByCode finds a location by its code within a warehouse
	FindByCode(ctx context.Context, tenantID, warehouseID uuid.UUID, code string) (*WarehouseLocation, error)

	// FindByWarehouse finds all locations within a warehouse, optionally
	// filtered by zone or type. Used by the Putaway Advisor (§4.G) to
	// assemble its candidate set.
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter WarehouseLocationFilter) ([]WarehouseLocation, error)

	// Save creates or updates a location
	Save(ctx context.Context, l *WarehouseLocation) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, l *WarehouseLocation) error

	// Delete deletes a location within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PutawayRuleRepository defines the interface for putaway rule persistence.
type PutawayRuleRepository interface {
	// FindByID finds a rule by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PutawayRule, error)

	// FindActiveForTenant finds every active rule for a tenant, the input
	// to the Putaway Advisor's scoring pass (§4.G step 1)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]PutawayRule, error)

	// Save creates or updates a rule
	Save(ctx context.Context, r *PutawayRule) error

	// Delete deletes a rule within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// RemovalStrategyRepository defines the interface for removal strategy
// persistence.
type RemovalStrategyRepository interface {
	// FindByID finds a strategy by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*RemovalStrategy, error)

	// FindActiveForScope finds every active strategy whose scope could
	// possibly match (warehouseID, productID); ResolveStrategy picks the
	// most specific one from the returned set (§4.H)
	FindActiveForScope(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) ([]RemovalStrategy, error)

	// Save creates or updates a strategy
	Save(ctx context.Context, s *RemovalStrategy) error

	// Delete deletes a strategy within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
