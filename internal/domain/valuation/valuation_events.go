package valuation

import (
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeValuationAccount = "ValuationAccount"

// Event type constants
const (
	EventTypeValuationReceiptBooked  = "ValuationReceiptBooked"
	EventTypeValuationDeliveryBooked = "ValuationDeliveryBooked"
	EventTypeValuationRevalued       = "ValuationRevalued"
	EventTypeValuationMethodChanged  = "ValuationMethodChanged"
	EventTypeValuationAdjusted       = "ValuationAdjusted"
)

// ValuationReceiptBookedEvent is raised when a receipt is booked against an account.
type ValuationReceiptBookedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID       `json:"account_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Method      Method          `json:"method"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	NewValue    decimal.Decimal `json:"new_value"`
}

// NewValuationReceiptBookedEvent creates a new ValuationReceiptBookedEvent.
func NewValuationReceiptBookedEvent(account *ValuationAccount, qty, unitCost decimal.Decimal) *ValuationReceiptBookedEvent {
	return &ValuationReceiptBookedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeValuationReceiptBooked, AggregateTypeValuationAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		WarehouseID:     account.WarehouseID,
		ProductID:       account.ProductID,
		Method:          account.Method,
		Quantity:        qty,
		UnitCost:        unitCost,
		NewQuantity:     account.TotalQuantity,
		NewValue:        account.TotalValue,
	}
}

// EventType returns the event type name.
func (e *ValuationReceiptBookedEvent) EventType() string {
	return EventTypeValuationReceiptBooked
}

// ValuationDeliveryBookedEvent is raised when a delivery is booked against an account.
type ValuationDeliveryBookedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID       `json:"account_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Method      Method          `json:"method"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	NewValue    decimal.Decimal `json:"new_value"`
}

// NewValuationDeliveryBookedEvent creates a new ValuationDeliveryBookedEvent.
func NewValuationDeliveryBookedEvent(account *ValuationAccount, qty decimal.Decimal) *ValuationDeliveryBookedEvent {
	return &ValuationDeliveryBookedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeValuationDeliveryBooked, AggregateTypeValuationAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		WarehouseID:     account.WarehouseID,
		ProductID:       account.ProductID,
		Method:          account.Method,
		Quantity:        qty,
		NewQuantity:     account.TotalQuantity,
		NewValue:        account.TotalValue,
	}
}

// EventType returns the event type name.
func (e *ValuationDeliveryBookedEvent) EventType() string {
	return EventTypeValuationDeliveryBooked
}

// ValuationRevaluedEvent is raised when an account's running unit cost is
// replaced without a quantity change.
type ValuationRevaluedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID       `json:"account_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	OldUnitCost decimal.Decimal `json:"old_unit_cost"`
	NewUnitCost decimal.Decimal `json:"new_unit_cost"`
	NewValue    decimal.Decimal `json:"new_value"`
}

// NewValuationRevaluedEvent creates a new ValuationRevaluedEvent.
func NewValuationRevaluedEvent(account *ValuationAccount, oldUnitCost decimal.Decimal) *ValuationRevaluedEvent {
	return &ValuationRevaluedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeValuationRevalued, AggregateTypeValuationAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		WarehouseID:     account.WarehouseID,
		ProductID:       account.ProductID,
		OldUnitCost:     oldUnitCost,
		NewUnitCost:     account.RunningUnitCost(),
		NewValue:        account.TotalValue,
	}
}

// EventType returns the event type name.
func (e *ValuationRevaluedEvent) EventType() string {
	return EventTypeValuationRevalued
}

// ValuationMethodChangedEvent is raised when an account switches costing method.
type ValuationMethodChangedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID `json:"account_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	OldMethod   Method    `json:"old_method"`
	NewMethod   Method    `json:"new_method"`
}

// NewValuationMethodChangedEvent creates a new ValuationMethodChangedEvent.
func NewValuationMethodChangedEvent(account *ValuationAccount, oldMethod Method) *ValuationMethodChangedEvent {
	return &ValuationMethodChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeValuationMethodChanged, AggregateTypeValuationAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		WarehouseID:     account.WarehouseID,
		ProductID:       account.ProductID,
		OldMethod:       oldMethod,
		NewMethod:       account.Method,
	}
}

// EventType returns the event type name.
func (e *ValuationMethodChangedEvent) EventType() string {
	return EventTypeValuationMethodChanged
}

// ValuationAdjustedEvent is raised when a quantity/value correction is booked
// against an account outside the normal receipt/delivery flow.
type ValuationAdjustedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	ValueDelta    decimal.Decimal `json:"value_delta"`
	Reason        string          `json:"reason"`
	NewQuantity   decimal.Decimal `json:"new_quantity"`
	NewValue      decimal.Decimal `json:"new_value"`
}

// NewValuationAdjustedEvent creates a new ValuationAdjustedEvent.
func NewValuationAdjustedEvent(account *ValuationAccount, qtyDelta, valueDelta decimal.Decimal, reason string) *ValuationAdjustedEvent {
	return &ValuationAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeValuationAdjusted, AggregateTypeValuationAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		WarehouseID:     account.WarehouseID,
		ProductID:       account.ProductID,
		QuantityDelta:   qtyDelta,
		ValueDelta:      valueDelta,
		Reason:          reason,
		NewQuantity:     account.TotalQuantity,
		NewValue:        account.TotalValue,
	}
}

// EventType returns the event type name.
func (e *ValuationAdjustedEvent) EventType() string {
	return EventTypeValuationAdjusted
}
