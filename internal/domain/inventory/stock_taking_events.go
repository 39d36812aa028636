package inventory

import (
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for StockTaking
const AggregateTypeStockTaking = "StockTaking"

// StockTaking event type constants
const (
	EventTypeStockTakingCreated   = "StockTakingCreated"
	EventTypeStockTakingStarted   = "StockTakingStarted"
	EventTypeStockTakingFinalized = "inventory.stock_take.finalized"
	EventTypeStockTakingCancelled = "StockTakingCancelled"
)

// StockTakingCreatedEvent is raised when a stock taking is created
type StockTakingCreatedEvent struct {
	shared.BaseDomainEvent
	StockTakingID uuid.UUID `json:"stock_taking_id"`
	TakingNumber  string    `json:"taking_number"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	CreatedByID   uuid.UUID `json:"created_by_id"`
	CreatedByName string    `json:"created_by_name"`
}

// NewStockTakingCreatedEvent creates a new StockTakingCreatedEvent
func NewStockTakingCreatedEvent(st *StockTaking) *StockTakingCreatedEvent {
	return &StockTakingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakingCreated, AggregateTypeStockTaking, st.ID, st.TenantID),
		StockTakingID:   st.ID,
		TakingNumber:    st.TakingNumber,
		WarehouseID:     st.WarehouseID,
		WarehouseName:   st.WarehouseName,
		CreatedByID:     st.CreatedByID,
		CreatedByName:   st.CreatedByName,
	}
}

// EventType returns the event type name
func (e *StockTakingCreatedEvent) EventType() string {
	return EventTypeStockTakingCreated
}

// StockTakingStartedEvent is raised when stock taking counting starts
type StockTakingStartedEvent struct {
	shared.BaseDomainEvent
	StockTakingID uuid.UUID `json:"stock_taking_id"`
	TakingNumber  string    `json:"taking_number"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	TotalItems    int       `json:"total_items"`
}

// NewStockTakingStartedEvent creates a new StockTakingStartedEvent
func NewStockTakingStartedEvent(st *StockTaking) *StockTakingStartedEvent {
	return &StockTakingStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakingStarted, AggregateTypeStockTaking, st.ID, st.TenantID),
		StockTakingID:   st.ID,
		TakingNumber:    st.TakingNumber,
		WarehouseID:     st.WarehouseID,
		TotalItems:      st.TotalItems,
	}
}

// EventType returns the event type name
func (e *StockTakingStartedEvent) EventType() string {
	return EventTypeStockTakingStarted
}

// StockTakingFinalizedEvent is raised when a stock taking is finalized: every
// non-zero difference has been posted as an adjustment-type stock move and
// the count is closed out.
type StockTakingFinalizedEvent struct {
	shared.BaseDomainEvent
	StockTakingID   uuid.UUID       `json:"stock_taking_id"`
	TakingNumber    string          `json:"taking_number"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	FinalizedByID   uuid.UUID       `json:"finalized_by_id"`
	FinalizedByName string          `json:"finalized_by_name"`
	DifferenceItems int             `json:"difference_items"`
	TotalDifference decimal.Decimal `json:"total_difference"`
}

// NewStockTakingFinalizedEvent creates a new StockTakingFinalizedEvent
func NewStockTakingFinalizedEvent(st *StockTaking) *StockTakingFinalizedEvent {
	var finalizedByID uuid.UUID
	if st.FinalizedByID != nil {
		finalizedByID = *st.FinalizedByID
	}
	return &StockTakingFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakingFinalized, AggregateTypeStockTaking, st.ID, st.TenantID),
		StockTakingID:   st.ID,
		TakingNumber:    st.TakingNumber,
		WarehouseID:     st.WarehouseID,
		FinalizedByID:   finalizedByID,
		FinalizedByName: st.FinalizedByName,
		DifferenceItems: st.DifferenceItems,
		TotalDifference: st.TotalDifference,
	}
}

// EventType returns the event type name
func (e *StockTakingFinalizedEvent) EventType() string {
	return EventTypeStockTakingFinalized
}

// StockTakingCancelledEvent is raised when stock taking is cancelled
type StockTakingCancelledEvent struct {
	shared.BaseDomainEvent
	StockTakingID uuid.UUID `json:"stock_taking_id"`
	TakingNumber  string    `json:"taking_number"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	Reason        string    `json:"reason"`
}

// NewStockTakingCancelledEvent creates a new StockTakingCancelledEvent
func NewStockTakingCancelledEvent(st *StockTaking) *StockTakingCancelledEvent {
	return &StockTakingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTakingCancelled, AggregateTypeStockTaking, st.ID, st.TenantID),
		StockTakingID:   st.ID,
		TakingNumber:    st.TakingNumber,
		WarehouseID:     st.WarehouseID,
		Reason:          st.Remark,
	}
}

// EventType returns the event type name
func (e *StockTakingCancelledEvent) EventType() string {
	return EventTypeStockTakingCancelled
}
