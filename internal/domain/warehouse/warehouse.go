package warehouse

import (
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// Classification is the fixed tag set a warehouse may carry.
type Classification string

const (
	ClassificationMain         Classification = "main"
	ClassificationTransit      Classification = "transit"
	ClassificationQuarantine   Classification = "quarantine"
	ClassificationDistribution Classification = "distribution"
	ClassificationRetail       Classification = "retail"
	ClassificationSatellite    Classification = "satellite"
)

// IsValid reports whether c is one of the fixed classification tags.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationMain, ClassificationTransit, ClassificationQuarantine,
		ClassificationDistribution, ClassificationRetail, ClassificationSatellite:
		return true
	}
	return false
}

// Status is the lifecycle state of a warehouse.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Warehouse is the aggregate root for a physical or virtual storage site.
// Warehouses form a self-referential tree via ParentWarehouseID; invariant
// I-2 requires the parent graph be acyclic per tenant, enforced by
// SetParent before a cycle-introducing move is ever persisted.
type Warehouse struct {
	shared.TenantAggregateRoot
	Code              string
	Name              string
	Classification    Classification
	Status            Status
	ParentWarehouseID *uuid.UUID
	Coordinates       *Coordinates // used as the removal-resolver's "closest_location" origin
}

// Coordinates is a simple planar position used for Manhattan-distance scoring.
type Coordinates struct {
	X int
	Y int
}

// NewWarehouse creates a new top-level (parentless) warehouse.
func NewWarehouse(tenantID uuid.UUID, code, name string, classification Classification) (*Warehouse, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_CODE", "Warehouse code cannot be empty")
	}
	if !classification.IsValid() {
		return nil, shared.NewDomainError("INVALID_CLASSIFICATION", "Unknown warehouse classification: "+string(classification))
	}

	return &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Classification:      classification,
		Status:              StatusActive,
	}, nil
}

// IsActive reports whether the warehouse accepts putaway/removal operations.
func (w *Warehouse) IsActive() bool {
	return w.Status == StatusActive
}

// SetParent assigns w's parent, rejecting a move that would introduce a
// cycle in the tenant's warehouse tree (invariant I-2). ancestorsOf must
// walk the persisted tree; see ValidateNoCycle.
func (w *Warehouse) SetParent(parentWarehouseID *uuid.UUID, ancestorsOf func(uuid.UUID) (*uuid.UUID, error)) error {
	if parentWarehouseID != nil && *parentWarehouseID == w.ID {
		return shared.NewDomainError("CYCLIC_WAREHOUSE_PARENT", "A warehouse cannot be its own parent")
	}
	if err := ValidateNoCycle(w.ID, parentWarehouseID, ancestorsOf); err != nil {
		return err
	}
	w.ParentWarehouseID = parentWarehouseID
	w.IncrementVersion()
	return nil
}

// WarehouseZone is the first-level subdivision of a warehouse.
type WarehouseZone struct {
	shared.TenantAggregateRoot
	WarehouseID uuid.UUID
	Code        string
	Name        string
}

// NewWarehouseZone creates a new zone belonging to a warehouse.
func NewWarehouseZone(tenantID, warehouseID uuid.UUID, code, name string) (*WarehouseZone, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ZONE_CODE", "Zone code cannot be empty")
	}
	return &WarehouseZone{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		WarehouseID:         warehouseID,
		Code:                code,
		Name:                name,
	}, nil
}

// LocationType is the physical role a location plays within a zone.
type LocationType string

const (
	LocationTypeShelf    LocationType = "shelf"
	LocationTypeBin      LocationType = "bin"
	LocationTypeFloor    LocationType = "floor"
	LocationTypePallet   LocationType = "pallet"
	LocationTypeStaging  LocationType = "staging"
	LocationTypeDock     LocationType = "dock"
)

// WarehouseLocation is the second-level subdivision: at most one zone,
// exactly one warehouse.
type WarehouseLocation struct {
	shared.TenantAggregateRoot
	WarehouseID  uuid.UUID
	ZoneID       *uuid.UUID
	Code         string
	Aisle        string
	Type         LocationType
	Capacity     int64
	CurrentStock int64
	Coordinates  *Coordinates
}

// NewWarehouseLocation creates a new location within a warehouse.
func NewWarehouseLocation(tenantID, warehouseID uuid.UUID, code string, locType LocationType, capacity int64) (*WarehouseLocation, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION_CODE", "Location code cannot be empty")
	}
	if capacity < 0 {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Location capacity cannot be negative")
	}
	return &WarehouseLocation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		WarehouseID:         warehouseID,
		Code:                code,
		Type:                locType,
		Capacity:            capacity,
	}, nil
}

// Utilization returns the fraction of capacity currently occupied, or 0 if
// the location has no capacity configured.
func (l *WarehouseLocation) Utilization() float64 {
	if l.Capacity <= 0 {
		return 0
	}
	return float64(l.CurrentStock) / float64(l.Capacity)
}

// Fits reports whether quantity can be added without exceeding capacity.
func (l *WarehouseLocation) Fits(quantity int64) bool {
	return l.CurrentStock+quantity <= l.Capacity
}

// ValidateNoCycle walks the ancestor chain starting at candidateParentID and
// fails if it ever reaches warehouseID, which would make warehouseID its own
// ancestor (invariant I-2). ancestorsOf is supplied by the caller (the
// repository, which alone can walk the persisted tree) so this stays a pure
// domain-layer check.
func ValidateNoCycle(warehouseID uuid.UUID, candidateParentID *uuid.UUID, ancestorsOf func(uuid.UUID) (*uuid.UUID, error)) error {
	if candidateParentID == nil {
		return nil
	}
	current := *candidateParentID
	seen := map[uuid.UUID]bool{warehouseID: true}
	for {
		if seen[current] {
			return shared.NewDomainError("CYCLIC_WAREHOUSE_PARENT", "Assigning this parent would create a cycle in the warehouse tree")
		}
		seen[current] = true
		parent, err := ancestorsOf(current)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}
		current = *parent
	}
}
