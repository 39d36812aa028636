package models

import (
	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/google/uuid"
)

// ReorderRuleModel is the persistence model for the ReorderRule aggregate root.
type ReorderRuleModel struct {
	TenantAggregateModel
	ProductID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_reorder_rule_product"`
	WarehouseID  *uuid.UUID `gorm:"type:uuid;index:idx_reorder_rule_warehouse"`
	ReorderPoint int64      `gorm:"not null;default:0"`
	MinQuantity  int64      `gorm:"not null;default:0"`
	MaxQuantity  int64      `gorm:"not null;default:0"`
	SafetyStock  int64      `gorm:"not null;default:0"`
	SupplierRef  string     `gorm:"type:varchar(255)"`
	LeadTimeDays int        `gorm:"not null;default:0"`
	Active       bool       `gorm:"not null;default:true;index:idx_reorder_rule_active"`
}

// TableName returns the table name for GORM
func (ReorderRuleModel) TableName() string {
	return "reorder_rules"
}

// ToDomain converts the persistence model to a domain ReorderRule entity.
func (m *ReorderRuleModel) ToDomain() *inventory.ReorderRule {
	rule := &inventory.ReorderRule{
		ProductID:    m.ProductID,
		WarehouseID:  m.WarehouseID,
		ReorderPoint: m.ReorderPoint,
		MinQuantity:  m.MinQuantity,
		MaxQuantity:  m.MaxQuantity,
		SafetyStock:  m.SafetyStock,
		SupplierRef:  m.SupplierRef,
		LeadTimeDays: m.LeadTimeDays,
		Active:       m.Active,
	}
	m.PopulateTenantAggregateRoot(&rule.TenantAggregateRoot)
	return rule
}

// ReorderRuleModelFromDomain builds a persistence model from a domain ReorderRule.
func ReorderRuleModelFromDomain(r *inventory.ReorderRule) *ReorderRuleModel {
	m := &ReorderRuleModel{
		ProductID:    r.ProductID,
		WarehouseID:  r.WarehouseID,
		ReorderPoint: r.ReorderPoint,
		MinQuantity:  r.MinQuantity,
		MaxQuantity:  r.MaxQuantity,
		SafetyStock:  r.SafetyStock,
		SupplierRef:  r.SupplierRef,
		LeadTimeDays: r.LeadTimeDays,
		Active:       r.Active,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
