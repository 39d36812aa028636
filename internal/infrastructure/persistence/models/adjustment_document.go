package models

import (
	"time"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// AdjustmentDocumentModel is the persistence model for the AdjustmentDocument aggregate root.
type AdjustmentDocumentModel struct {
	TenantAggregateModel
	DocumentNumber string                             `gorm:"type:varchar(50);not null;uniqueIndex:idx_adjustment_document_number_tenant,priority:2"`
	WarehouseID    uuid.UUID                          `gorm:"type:uuid;not null;index"`
	WarehouseName  string                             `gorm:"type:varchar(100);not null"`
	Status         inventory.AdjustmentDocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Reason         string                             `gorm:"type:varchar(500)"`
	CreatedByID    uuid.UUID                          `gorm:"type:uuid;not null"`
	CreatedByName  string                             `gorm:"type:varchar(100);not null"`
	PostedAt       *time.Time                         `gorm:""`
	CancelledAt    *time.Time                         `gorm:""`
	CancelReason   string                             `gorm:"type:varchar(500)"`
	Lines          []AdjustmentDocumentLineModel      `gorm:"foreignKey:AdjustmentDocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (AdjustmentDocumentModel) TableName() string {
	return "adjustment_documents"
}

// ToDomain converts the persistence model to a domain AdjustmentDocument entity.
func (m *AdjustmentDocumentModel) ToDomain() *inventory.AdjustmentDocument {
	d := &inventory.AdjustmentDocument{
		DocumentNumber: m.DocumentNumber,
		WarehouseID:    m.WarehouseID,
		WarehouseName:  m.WarehouseName,
		Status:         m.Status,
		Reason:         m.Reason,
		CreatedByID:    m.CreatedByID,
		CreatedByName:  m.CreatedByName,
		PostedAt:       m.PostedAt,
		CancelledAt:    m.CancelledAt,
		CancelReason:   m.CancelReason,
		Lines:          make([]inventory.AdjustmentDocumentLine, len(m.Lines)),
	}
	m.PopulateTenantAggregateRoot(&d.TenantAggregateRoot)
	for i, line := range m.Lines {
		d.Lines[i] = *line.ToDomain()
	}
	return d
}

// FromDomain populates the persistence model from a domain AdjustmentDocument entity.
func (m *AdjustmentDocumentModel) FromDomain(d *inventory.AdjustmentDocument) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.DocumentNumber = d.DocumentNumber
	m.WarehouseID = d.WarehouseID
	m.WarehouseName = d.WarehouseName
	m.Status = d.Status
	m.Reason = d.Reason
	m.CreatedByID = d.CreatedByID
	m.CreatedByName = d.CreatedByName
	m.PostedAt = d.PostedAt
	m.CancelledAt = d.CancelledAt
	m.CancelReason = d.CancelReason
	m.Lines = make([]AdjustmentDocumentLineModel, len(d.Lines))
	for i, line := range d.Lines {
		m.Lines[i] = *AdjustmentDocumentLineModelFromDomain(&line)
	}
}

// AdjustmentDocumentModelFromDomain creates a new persistence model from a domain AdjustmentDocument entity.
func AdjustmentDocumentModelFromDomain(d *inventory.AdjustmentDocument) *AdjustmentDocumentModel {
	m := &AdjustmentDocumentModel{}
	m.FromDomain(d)
	return m
}

// AdjustmentDocumentLineModel is the persistence model for the AdjustmentDocumentLine entity.
type AdjustmentDocumentLineModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key"`
	AdjustmentDocumentID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID `gorm:"type:uuid;not null"`
	WarehouseID          uuid.UUID `gorm:"type:uuid;not null"`
	DeltaQuantityMinor   int64     `gorm:"column:delta_quantity;not null"`
	UnitCostMinor        int64     `gorm:"column:unit_cost;not null;default:0"`
	Remark               string    `gorm:"type:varchar(500)"`
	Posted               bool      `gorm:"not null;default:false"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AdjustmentDocumentLineModel) TableName() string {
	return "adjustment_document_lines"
}

// ToDomain converts the persistence model to a domain AdjustmentDocumentLine entity.
func (m *AdjustmentDocumentLineModel) ToDomain() *inventory.AdjustmentDocumentLine {
	return &inventory.AdjustmentDocumentLine{
		ID:                   m.ID,
		AdjustmentDocumentID: m.AdjustmentDocumentID,
		ProductID:            m.ProductID,
		WarehouseID:          m.WarehouseID,
		DeltaQuantity:        shared.QuantityMinorToDecimal(m.DeltaQuantityMinor),
		UnitCost:             shared.MoneyMinorToDecimal(m.UnitCostMinor),
		Remark:               m.Remark,
		Posted:               m.Posted,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain AdjustmentDocumentLine entity.
func (m *AdjustmentDocumentLineModel) FromDomain(l *inventory.AdjustmentDocumentLine) {
	m.ID = l.ID
	m.AdjustmentDocumentID = l.AdjustmentDocumentID
	m.ProductID = l.ProductID
	m.WarehouseID = l.WarehouseID
	m.DeltaQuantityMinor = shared.DecimalToQuantityMinor(l.DeltaQuantity)
	m.UnitCostMinor = shared.DecimalToMoneyMinor(l.UnitCost)
	m.Remark = l.Remark
	m.Posted = l.Posted
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// AdjustmentDocumentLineModelFromDomain creates a new persistence model from a domain AdjustmentDocumentLine entity.
func AdjustmentDocumentLineModelFromDomain(l *inventory.AdjustmentDocumentLine) *AdjustmentDocumentLineModel {
	m := &AdjustmentDocumentLineModel{}
	m.FromDomain(l)
	return m
}
