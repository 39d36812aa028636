package inventory

import (
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeReorderRule = "ReorderRule"

const EventTypeReorderTriggered = "reorder.triggered"

// ReorderTriggeredEvent is emitted when the Replenishment Controller finds
// a rule's projected quantity below its effective reorder point (§4.I).
type ReorderTriggeredEvent struct {
	shared.BaseDomainEvent
	RuleID                 uuid.UUID  `json:"rule_id"`
	ProductID               uuid.UUID  `json:"product_id"`
	WarehouseID             *uuid.UUID `json:"warehouse_id,omitempty"`
	ProjectedQuantity       int64      `json:"projected_quantity"`
	CurrentQuantity         int64      `json:"current_quantity"`
	SuggestedOrderQuantity  int64      `json:"suggested_order_quantity"`
}

// NewReorderTriggeredEvent creates a new ReorderTriggeredEvent.
func NewReorderTriggeredEvent(rule *ReorderRule, currentQuantity int64, eval ReplenishmentEvaluation) *ReorderTriggeredEvent {
	return &ReorderTriggeredEvent{
		BaseDomainEvent:        shared.NewBaseDomainEvent(EventTypeReorderTriggered, AggregateTypeReorderRule, rule.ID, rule.TenantID),
		RuleID:                 rule.ID,
		ProductID:              rule.ProductID,
		WarehouseID:            rule.WarehouseID,
		ProjectedQuantity:      eval.ProjectedQuantity,
		CurrentQuantity:        currentQuantity,
		SuggestedOrderQuantity: eval.SuggestedOrderQuantity,
	}
}

// EventType returns the event type name
func (e *ReorderTriggeredEvent) EventType() string {
	return EventTypeReorderTriggered
}
