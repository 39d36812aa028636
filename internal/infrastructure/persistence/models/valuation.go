package models

import (
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/valuation"
	"github.com/google/uuid"
)

// ValuationAccountModel is the persistence model for the ValuationAccount
// aggregate root.
type ValuationAccountModel struct {
	TenantAggregateModel
	WarehouseID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_valuation_account_warehouse_product,priority:2"`
	ProductID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_valuation_account_warehouse_product,priority:3"`
	Method             valuation.Method `gorm:"type:varchar(16);not null"`
	TotalQuantityMinor int64            `gorm:"column:total_quantity;not null;default:0"`
	TotalValueMinor    int64            `gorm:"column:total_value;not null;default:0"`
	LastUnitCostMinor  int64            `gorm:"column:last_unit_cost;not null;default:0"`
	StandardCostMinor  int64            `gorm:"column:standard_cost;not null;default:0"`
	Layers             []CostLayerModel `gorm:"foreignKey:ValuationAccountID;references:ID"`
}

// TableName returns the table name for GORM
func (ValuationAccountModel) TableName() string {
	return "valuation_accounts"
}

// ToDomain converts the persistence model to a domain ValuationAccount entity.
func (m *ValuationAccountModel) ToDomain() *valuation.ValuationAccount {
	layers := make([]valuation.CostLayer, len(m.Layers))
	for i, l := range m.Layers {
		layers[i] = *l.ToDomain()
	}

	account := &valuation.ValuationAccount{
		WarehouseID:   m.WarehouseID,
		ProductID:     m.ProductID,
		Method:        m.Method,
		TotalQuantity: shared.QuantityMinorToDecimal(m.TotalQuantityMinor),
		TotalValue:    shared.MoneyMinorToDecimal(m.TotalValueMinor),
		LastUnitCost:  shared.MoneyMinorToDecimal(m.LastUnitCostMinor),
		StandardCost:  shared.MoneyMinorToDecimal(m.StandardCostMinor),
		Layers:        layers,
	}
	m.PopulateTenantAggregateRoot(&account.TenantAggregateRoot)
	return account
}

// ValuationAccountModelFromDomain builds a persistence model from a domain
// ValuationAccount.
func ValuationAccountModelFromDomain(a *valuation.ValuationAccount) *ValuationAccountModel {
	m := &ValuationAccountModel{
		WarehouseID:        a.WarehouseID,
		ProductID:          a.ProductID,
		Method:             a.Method,
		TotalQuantityMinor: shared.DecimalToQuantityMinor(a.TotalQuantity),
		TotalValueMinor:    shared.DecimalToMoneyMinor(a.TotalValue),
		LastUnitCostMinor:  shared.DecimalToMoneyMinor(a.LastUnitCost),
		StandardCostMinor:  shared.DecimalToMoneyMinor(a.StandardCost),
		Layers:             make([]CostLayerModel, len(a.Layers)),
	}
	for i, l := range a.Layers {
		m.Layers[i] = *CostLayerModelFromDomain(&l)
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// CostLayerModel is the persistence model for one FIFO CostLayer.
type CostLayerModel struct {
	BaseModel
	ValuationAccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	QuantityMinor      int64     `gorm:"column:quantity;not null"`
	UnitCostMinor      int64     `gorm:"column:unit_cost;not null"`
	ReceivedAt         time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CostLayerModel) TableName() string {
	return "cost_layers"
}

// ToDomain converts the persistence model to a domain CostLayer entity.
func (m *CostLayerModel) ToDomain() *valuation.CostLayer {
	return &valuation.CostLayer{
		BaseEntity:         m.BaseModel.ToDomain(),
		ValuationAccountID: m.ValuationAccountID,
		Quantity:           shared.QuantityMinorToDecimal(m.QuantityMinor),
		UnitCost:           shared.MoneyMinorToDecimal(m.UnitCostMinor),
		ReceivedAt:         m.ReceivedAt,
	}
}

// CostLayerModelFromDomain builds a persistence model from a domain
// CostLayer.
func CostLayerModelFromDomain(l *valuation.CostLayer) *CostLayerModel {
	m := &CostLayerModel{
		ValuationAccountID: l.ValuationAccountID,
		QuantityMinor:      shared.DecimalToQuantityMinor(l.Quantity),
		UnitCostMinor:      shared.DecimalToMoneyMinor(l.UnitCost),
		ReceivedAt:         l.ReceivedAt,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// ValuationHistoryModel is the persistence model for an append-only
// ValuationHistory audit row.
type ValuationHistoryModel struct {
	BaseModel
	TenantID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	ValuationAccountID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Kind               valuation.HistoryKind `gorm:"type:varchar(16);not null"`
	PriorQuantityMinor int64                 `gorm:"column:prior_quantity;not null"`
	NewQuantityMinor   int64                 `gorm:"column:new_quantity;not null"`
	PriorValueMinor    int64                 `gorm:"column:prior_value;not null"`
	NewValueMinor      int64                 `gorm:"column:new_value;not null"`
	PriorUnitCostMinor int64                 `gorm:"column:prior_unit_cost;not null"`
	NewUnitCostMinor   int64                 `gorm:"column:new_unit_cost;not null"`
	VarianceMinor      int64                 `gorm:"column:variance;not null;default:0"`
}

// TableName returns the table name for GORM
func (ValuationHistoryModel) TableName() string {
	return "valuation_history"
}

// ToDomain converts the persistence model to a domain ValuationHistory entity.
func (m *ValuationHistoryModel) ToDomain() *valuation.ValuationHistory {
	return &valuation.ValuationHistory{
		BaseEntity:         m.BaseModel.ToDomain(),
		TenantID:           m.TenantID,
		ValuationAccountID: m.ValuationAccountID,
		Kind:               m.Kind,
		PriorQuantity:      shared.QuantityMinorToDecimal(m.PriorQuantityMinor),
		NewQuantity:        shared.QuantityMinorToDecimal(m.NewQuantityMinor),
		PriorValue:         shared.MoneyMinorToDecimal(m.PriorValueMinor),
		NewValue:           shared.MoneyMinorToDecimal(m.NewValueMinor),
		PriorUnitCost:      shared.MoneyMinorToDecimal(m.PriorUnitCostMinor),
		NewUnitCost:        shared.MoneyMinorToDecimal(m.NewUnitCostMinor),
		Variance:           shared.MoneyMinorToDecimal(m.VarianceMinor),
	}
}

// ValuationHistoryModelFromDomain builds a persistence model from a domain
// ValuationHistory.
func ValuationHistoryModelFromDomain(h *valuation.ValuationHistory) *ValuationHistoryModel {
	m := &ValuationHistoryModel{
		TenantID:           h.TenantID,
		ValuationAccountID: h.ValuationAccountID,
		Kind:               h.Kind,
		PriorQuantityMinor: shared.DecimalToQuantityMinor(h.PriorQuantity),
		NewQuantityMinor:   shared.DecimalToQuantityMinor(h.NewQuantity),
		PriorValueMinor:    shared.DecimalToMoneyMinor(h.PriorValue),
		NewValueMinor:      shared.DecimalToMoneyMinor(h.NewValue),
		PriorUnitCostMinor: shared.DecimalToMoneyMinor(h.PriorUnitCost),
		NewUnitCostMinor:   shared.DecimalToMoneyMinor(h.NewUnitCost),
		VarianceMinor:      shared.DecimalToMoneyMinor(h.Variance),
	}
	m.FromDomainBaseEntity(h.BaseEntity)
	return m
}
