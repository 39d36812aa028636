package inventory

import (
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for AdjustmentDocument
const AggregateTypeAdjustmentDocument = "AdjustmentDocument"

// AdjustmentDocument event type constants
const (
	EventTypeAdjustmentDocumentCreated   = "AdjustmentDocumentCreated"
	EventTypeAdjustmentDocumentPosted    = "AdjustmentDocumentPosted"
	EventTypeAdjustmentDocumentCancelled = "AdjustmentDocumentCancelled"
)

// AdjustmentDocumentCreatedEvent is raised when an adjustment document is created
type AdjustmentDocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	WarehouseName  string    `json:"warehouse_name"`
	CreatedByID    uuid.UUID `json:"created_by_id"`
	CreatedByName  string    `json:"created_by_name"`
}

// NewAdjustmentDocumentCreatedEvent creates a new AdjustmentDocumentCreatedEvent
func NewAdjustmentDocumentCreatedEvent(d *AdjustmentDocument) *AdjustmentDocumentCreatedEvent {
	return &AdjustmentDocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdjustmentDocumentCreated, AggregateTypeAdjustmentDocument, d.ID, d.TenantID),
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		WarehouseID:     d.WarehouseID,
		WarehouseName:   d.WarehouseName,
		CreatedByID:     d.CreatedByID,
		CreatedByName:   d.CreatedByName,
	}
}

// EventType returns the event type name
func (e *AdjustmentDocumentCreatedEvent) EventType() string {
	return EventTypeAdjustmentDocumentCreated
}

// AdjustmentDocumentPostedEvent is raised when an adjustment document's lines
// have all been applied to the Stock Ledger and the document is posted.
type AdjustmentDocumentPostedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	LineCount      int       `json:"line_count"`
}

// NewAdjustmentDocumentPostedEvent creates a new AdjustmentDocumentPostedEvent
func NewAdjustmentDocumentPostedEvent(d *AdjustmentDocument) *AdjustmentDocumentPostedEvent {
	return &AdjustmentDocumentPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdjustmentDocumentPosted, AggregateTypeAdjustmentDocument, d.ID, d.TenantID),
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		WarehouseID:     d.WarehouseID,
		LineCount:       len(d.Lines),
	}
}

// EventType returns the event type name
func (e *AdjustmentDocumentPostedEvent) EventType() string {
	return EventTypeAdjustmentDocumentPosted
}

// AdjustmentDocumentCancelledEvent is raised when an adjustment document is cancelled
type AdjustmentDocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	Reason         string    `json:"reason"`
}

// NewAdjustmentDocumentCancelledEvent creates a new AdjustmentDocumentCancelledEvent
func NewAdjustmentDocumentCancelledEvent(d *AdjustmentDocument) *AdjustmentDocumentCancelledEvent {
	return &AdjustmentDocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdjustmentDocumentCancelled, AggregateTypeAdjustmentDocument, d.ID, d.TenantID),
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		WarehouseID:     d.WarehouseID,
		Reason:          d.CancelReason,
	}
}

// EventType returns the event type name
func (e *AdjustmentDocumentCancelledEvent) EventType() string {
	return EventTypeAdjustmentDocumentCancelled
}
