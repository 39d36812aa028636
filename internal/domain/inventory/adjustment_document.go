package inventory

import (
	"fmt"
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentDocumentStatus represents the lifecycle state of an adjustment
// document (spec.md §4.F).
type AdjustmentDocumentStatus string

const (
	AdjustmentDocumentStatusDraft     AdjustmentDocumentStatus = "draft"
	AdjustmentDocumentStatusPosted    AdjustmentDocumentStatus = "posted"
	AdjustmentDocumentStatusCancelled AdjustmentDocumentStatus = "cancelled"
)

// IsValid checks if the status is a valid AdjustmentDocumentStatus
func (s AdjustmentDocumentStatus) IsValid() bool {
	switch s {
	case AdjustmentDocumentStatusDraft, AdjustmentDocumentStatusPosted, AdjustmentDocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of AdjustmentDocumentStatus
func (s AdjustmentDocumentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are one-way except draft<->draft edits (spec.md §3):
// draft -> posted, draft -> cancelled. Posted and cancelled are terminal.
func (s AdjustmentDocumentStatus) CanTransitionTo(target AdjustmentDocumentStatus) bool {
	switch s {
	case AdjustmentDocumentStatusDraft:
		return target == AdjustmentDocumentStatusPosted || target == AdjustmentDocumentStatusCancelled
	case AdjustmentDocumentStatusPosted, AdjustmentDocumentStatusCancelled:
		return false
	}
	return false
}

// AdjustmentDocumentLine is a single product/quantity correction within an
// adjustment document.
type AdjustmentDocumentLine struct {
	ID                   uuid.UUID
	AdjustmentDocumentID uuid.UUID
	ProductID            uuid.UUID
	WarehouseID          uuid.UUID
	DeltaQuantity        decimal.Decimal // signed: positive increases stock, negative decreases it
	UnitCost             decimal.Decimal // cost basis used when DeltaQuantity is positive
	Remark               string
	Posted               bool // set once this line's move has been applied
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewAdjustmentDocumentLine creates a new adjustment document line.
func NewAdjustmentDocumentLine(documentID, productID, warehouseID uuid.UUID, deltaQuantity, unitCost decimal.Decimal, remark string) *AdjustmentDocumentLine {
	now := time.Now()
	return &AdjustmentDocumentLine{
		ID:                   shared.NewID(),
		AdjustmentDocumentID: documentID,
		ProductID:            productID,
		WarehouseID:          warehouseID,
		DeltaQuantity:        deltaQuantity,
		UnitCost:             unitCost,
		Remark:               remark,
		Posted:               false,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// AdjustmentDocument is the aggregate root for a manual stock correction
// document: a header with lines that, once posted, commit each line's
// quantity delta as a stock move through the Stock Ledger (spec.md §4.F).
type AdjustmentDocument struct {
	shared.TenantAggregateRoot
	DocumentNumber string
	WarehouseID    uuid.UUID
	WarehouseName  string
	Status         AdjustmentDocumentStatus
	Reason         string
	CreatedByID    uuid.UUID
	CreatedByName  string
	PostedAt       *time.Time
	CancelledAt    *time.Time
	CancelReason   string
	Lines          []AdjustmentDocumentLine
}

// NewAdjustmentDocument creates a new draft adjustment document.
func NewAdjustmentDocument(tenantID, warehouseID uuid.UUID, warehouseName, documentNumber, reason string, createdByID uuid.UUID, createdByName string) (*AdjustmentDocument, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if createdByID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}

	doc := &AdjustmentDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DocumentNumber:      documentNumber,
		WarehouseID:         warehouseID,
		WarehouseName:       warehouseName,
		Status:              AdjustmentDocumentStatusDraft,
		Reason:              reason,
		CreatedByID:         createdByID,
		CreatedByName:       createdByName,
		Lines:               make([]AdjustmentDocumentLine, 0),
	}

	doc.AddDomainEvent(NewAdjustmentDocumentCreatedEvent(doc))

	return doc, nil
}

// AddLine adds a correction line to the document. Only permitted in draft.
func (d *AdjustmentDocument) AddLine(productID uuid.UUID, deltaQuantity, unitCost decimal.Decimal, remark string) error {
	if d.Status != AdjustmentDocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Can only add lines in draft status")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if deltaQuantity.IsZero() {
		return shared.NewDomainError("ZERO_DELTA", "Adjustment delta quantity cannot be zero")
	}

	line := NewAdjustmentDocumentLine(d.ID, productID, d.WarehouseID, deltaQuantity, unitCost, remark)
	d.Lines = append(d.Lines, *line)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// RemoveLine removes a line by ID. Only permitted in draft.
func (d *AdjustmentDocument) RemoveLine(lineID uuid.UUID) error {
	if d.Status != AdjustmentDocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Can only remove lines in draft status")
	}

	for i, line := range d.Lines {
		if line.ID == lineID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			d.UpdatedAt = time.Now()
			d.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Line not found in adjustment document")
}

// MarkLinePosted records that a line's stock move has been applied. Used by
// the application layer while posting, so a partially-failed post can be
// retried without re-evaluating lines that already succeeded.
func (d *AdjustmentDocument) MarkLinePosted(lineID uuid.UUID) error {
	for i := range d.Lines {
		if d.Lines[i].ID == lineID {
			d.Lines[i].Posted = true
			d.Lines[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Line not found in adjustment document")
}

// AllLinesPosted returns true if every line has been applied.
func (d *AdjustmentDocument) AllLinesPosted() bool {
	for _, line := range d.Lines {
		if !line.Posted {
			return false
		}
	}
	return true
}

// Post transitions the document to posted once every line's move has been
// applied. The application layer is responsible for applying each line's
// move through the Stock Ledger and calling MarkLinePosted before calling
// Post; Post itself only performs the state transition and is safe to call
// again on an already-posted document (a no-op, matching the idempotent
// posting contract in spec.md §4.F).
func (d *AdjustmentDocument) Post() error {
	if d.Status == AdjustmentDocumentStatusPosted {
		return nil
	}
	if !d.Status.CanTransitionTo(AdjustmentDocumentStatusPosted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to posted", d.Status))
	}
	if len(d.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot post an adjustment document with no lines")
	}
	if !d.AllLinesPosted() {
		return shared.NewDomainError("INCOMPLETE_POST", "Not every line has been applied to the Stock Ledger yet")
	}

	now := time.Now()
	d.Status = AdjustmentDocumentStatusPosted
	d.PostedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewAdjustmentDocumentPostedEvent(d))

	return nil
}

// Cancel cancels the document. Only permitted from draft; posted documents
// are not reversible through cancel (spec.md §4.F).
func (d *AdjustmentDocument) Cancel(reason string) error {
	if !d.Status.CanTransitionTo(AdjustmentDocumentStatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to cancelled", d.Status))
	}

	now := time.Now()
	d.Status = AdjustmentDocumentStatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewAdjustmentDocumentCancelledEvent(d))

	return nil
}
