package models

import (
	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/google/uuid"
)

// CoordinatesModel embeds as a pair of nullable columns; gorm.Model types
// can't express a nullable embedded struct cleanly, so both fields are
// nullable ints kept in lockstep.
type CoordinatesModel struct {
	CoordinateX *int `gorm:"column:coordinate_x"`
	CoordinateY *int `gorm:"column:coordinate_y"`
}

func (m CoordinatesModel) toDomain() *warehouse.Coordinates {
	if m.CoordinateX == nil || m.CoordinateY == nil {
		return nil
	}
	return &warehouse.Coordinates{X: *m.CoordinateX, Y: *m.CoordinateY}
}

func coordinatesModelFromDomain(c *warehouse.Coordinates) CoordinatesModel {
	if c == nil {
		return CoordinatesModel{}
	}
	x, y := c.X, c.Y
	return CoordinatesModel{CoordinateX: &x, CoordinateY: &y}
}

// WarehouseModel is the persistence model for the Warehouse aggregate root.
type WarehouseModel struct {
	TenantAggregateModel
	Code              string                    `gorm:"type:varchar(64);not null;uniqueIndex:idx_warehouse_tenant_code,priority:2"`
	Name              string                    `gorm:"type:varchar(255);not null"`
	Classification    warehouse.Classification  `gorm:"type:varchar(32);not null"`
	Status            warehouse.Status          `gorm:"type:varchar(16);not null;default:active"`
	ParentWarehouseID *uuid.UUID                `gorm:"type:uuid;index"`
	CoordinatesModel
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse entity.
func (m *WarehouseModel) ToDomain() *warehouse.Warehouse {
	w := &warehouse.Warehouse{
		Code:              m.Code,
		Name:              m.Name,
		Classification:    m.Classification,
		Status:            m.Status,
		ParentWarehouseID: m.ParentWarehouseID,
		Coordinates:       m.CoordinatesModel.toDomain(),
	}
	m.PopulateTenantAggregateRoot(&w.TenantAggregateRoot)
	return w
}

// WarehouseModelFromDomain builds a persistence model from a domain Warehouse.
func WarehouseModelFromDomain(w *warehouse.Warehouse) *WarehouseModel {
	m := &WarehouseModel{
		Code:              w.Code,
		Name:              w.Name,
		Classification:    w.Classification,
		Status:            w.Status,
		ParentWarehouseID: w.ParentWarehouseID,
		CoordinatesModel:  coordinatesModelFromDomain(w.Coordinates),
	}
	m.FromDomainTenantAggregateRoot(w.TenantAggregateRoot)
	return m
}

// WarehouseZoneModel is the persistence model for WarehouseZone.
type WarehouseZoneModel struct {
	TenantAggregateModel
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code        string    `gorm:"type:varchar(64);not null"`
	Name        string    `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (WarehouseZoneModel) TableName() string {
	return "warehouse_zones"
}

// ToDomain converts the persistence model to a domain WarehouseZone entity.
func (m *WarehouseZoneModel) ToDomain() *warehouse.WarehouseZone {
	z := &warehouse.WarehouseZone{
		WarehouseID: m.WarehouseID,
		Code:        m.Code,
		Name:        m.Name,
	}
	m.PopulateTenantAggregateRoot(&z.TenantAggregateRoot)
	return z
}

// WarehouseZoneModelFromDomain builds a persistence model from a domain WarehouseZone.
func WarehouseZoneModelFromDomain(z *warehouse.WarehouseZone) *WarehouseZoneModel {
	m := &WarehouseZoneModel{
		WarehouseID: z.WarehouseID,
		Code:        z.Code,
		Name:        z.Name,
	}
	m.FromDomainTenantAggregateRoot(z.TenantAggregateRoot)
	return m
}

// WarehouseLocationModel is the persistence model for WarehouseLocation.
type WarehouseLocationModel struct {
	TenantAggregateModel
	WarehouseID  uuid.UUID            `gorm:"type:uuid;not null;index:idx_location_warehouse"`
	ZoneID       *uuid.UUID           `gorm:"type:uuid;index"`
	Code         string               `gorm:"type:varchar(64);not null"`
	Aisle        string               `gorm:"type:varchar(64)"`
	Type         warehouse.LocationType `gorm:"type:varchar(16);not null"`
	Capacity     int64                `gorm:"not null;default:0"`
	CurrentStock int64                `gorm:"not null;default:0"`
	CoordinatesModel
}

// TableName returns the table name for GORM
func (WarehouseLocationModel) TableName() string {
	return "warehouse_locations"
}

// ToDomain converts the persistence model to a domain WarehouseLocation entity.
func (m *WarehouseLocationModel) ToDomain() *warehouse.WarehouseLocation {
	l := &warehouse.WarehouseLocation{
		WarehouseID:  m.WarehouseID,
		ZoneID:       m.ZoneID,
		Code:         m.Code,
		Aisle:        m.Aisle,
		Type:         m.Type,
		Capacity:     m.Capacity,
		CurrentStock: m.CurrentStock,
		Coordinates:  m.CoordinatesModel.toDomain(),
	}
	m.PopulateTenantAggregateRoot(&l.TenantAggregateRoot)
	return l
}

// WarehouseLocationModelFromDomain builds a persistence model from a domain WarehouseLocation.
func WarehouseLocationModelFromDomain(l *warehouse.WarehouseLocation) *WarehouseLocationModel {
	m := &WarehouseLocationModel{
		WarehouseID:      l.WarehouseID,
		ZoneID:           l.ZoneID,
		Code:             l.Code,
		Aisle:            l.Aisle,
		Type:             l.Type,
		Capacity:         l.Capacity,
		CurrentStock:     l.CurrentStock,
		CoordinatesModel: coordinatesModelFromDomain(l.Coordinates),
	}
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	return m
}
