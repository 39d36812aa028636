package models

import (
	"encoding/json"

	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/google/uuid"
)

// PutawayRuleModel is the persistence model for PutawayRule.
type PutawayRuleModel struct {
	TenantAggregateModel
	RuleType      warehouse.PutawayRuleType `gorm:"type:varchar(16);not null"`
	ProductID     *uuid.UUID                `gorm:"type:uuid;index"`
	WarehouseID   *uuid.UUID                `gorm:"type:uuid;index"`
	MatchMode     warehouse.MatchMode       `gorm:"type:varchar(16);not null"`
	Preferences   []byte                    `gorm:"type:jsonb"`
	MinQuantity   *int64
	MaxQuantity   *int64
	PriorityScore int  `gorm:"not null;default:0"`
	Active        bool `gorm:"not null;default:true;index:idx_putaway_rule_active"`
}

// TableName returns the table name for GORM
func (PutawayRuleModel) TableName() string {
	return "putaway_rules"
}

// ToDomain converts the persistence model to a domain PutawayRule entity.
// A malformed Preferences payload degrades to no preferences rather than
// failing the whole read; this column is never hand-edited outside Save.
func (m *PutawayRuleModel) ToDomain() *warehouse.PutawayRule {
	var prefs []warehouse.LocationPreference
	if len(m.Preferences) > 0 {
		_ = json.Unmarshal(m.Preferences, &prefs)
	}
	r := &warehouse.PutawayRule{
		RuleType:      m.RuleType,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		MatchMode:     m.MatchMode,
		Preferences:   prefs,
		MinQuantity:   m.MinQuantity,
		MaxQuantity:   m.MaxQuantity,
		PriorityScore: m.PriorityScore,
		Active:        m.Active,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// PutawayRuleModelFromDomain builds a persistence model from a domain PutawayRule.
func PutawayRuleModelFromDomain(r *warehouse.PutawayRule) *PutawayRuleModel {
	prefs, _ := json.Marshal(r.Preferences)
	m := &PutawayRuleModel{
		RuleType:      r.RuleType,
		ProductID:     r.ProductID,
		WarehouseID:   r.WarehouseID,
		MatchMode:     r.MatchMode,
		Preferences:   prefs,
		MinQuantity:   r.MinQuantity,
		MaxQuantity:   r.MaxQuantity,
		PriorityScore: r.PriorityScore,
		Active:        r.Active,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
