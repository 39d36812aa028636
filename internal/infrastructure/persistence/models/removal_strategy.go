package models

import (
	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/google/uuid"
)

// RemovalStrategyModel is the persistence model for RemovalStrategy.
type RemovalStrategyModel struct {
	TenantAggregateModel
	WarehouseID   *uuid.UUID                   `gorm:"type:uuid;index"`
	ProductID     *uuid.UUID                   `gorm:"type:uuid;index"`
	StrategyType  warehouse.RemovalStrategyType `gorm:"type:varchar(24);not null"`
	PriorityScore int                           `gorm:"not null;default:0"`
	Active        bool                          `gorm:"not null;default:true;index:idx_removal_strategy_active"`
}

// TableName returns the table name for GORM
func (RemovalStrategyModel) TableName() string {
	return "removal_strategies"
}

// ToDomain converts the persistence model to a domain RemovalStrategy entity.
func (m *RemovalStrategyModel) ToDomain() *warehouse.RemovalStrategy {
	s := &warehouse.RemovalStrategy{
		WarehouseID:   m.WarehouseID,
		ProductID:     m.ProductID,
		StrategyType:  m.StrategyType,
		PriorityScore: m.PriorityScore,
		Active:        m.Active,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// RemovalStrategyModelFromDomain builds a persistence model from a domain RemovalStrategy.
func RemovalStrategyModelFromDomain(s *warehouse.RemovalStrategy) *RemovalStrategyModel {
	m := &RemovalStrategyModel{
		WarehouseID:   s.WarehouseID,
		ProductID:     s.ProductID,
		StrategyType:  s.StrategyType,
		PriorityScore: s.PriorityScore,
		Active:        s.Active,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}
