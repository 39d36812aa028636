package inventory

import (
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// ReorderRule is a per-(product, optional warehouse) replenishment policy
// evaluated by the Replenishment Controller (§4.I).
type ReorderRule struct {
	shared.TenantAggregateRoot
	ProductID    uuid.UUID
	WarehouseID  *uuid.UUID // nil means the rule applies across all warehouses
	ReorderPoint int64
	MinQuantity  int64
	MaxQuantity  int64
	SafetyStock  int64
	SupplierRef  string // opaque reference; this substrate does not model suppliers
	LeadTimeDays int
	Active       bool
}

// NewReorderRule creates a new active reorder rule.
func NewReorderRule(tenantID, productID uuid.UUID, reorderPoint, minQuantity, maxQuantity, safetyStock int64) (*ReorderRule, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if reorderPoint < 0 || minQuantity < 0 || maxQuantity < 0 || safetyStock < 0 {
		return nil, shared.NewDomainError("INVALID_REORDER_RULE", "Reorder rule quantities cannot be negative")
	}
	if maxQuantity < minQuantity {
		return nil, shared.NewDomainError("INVALID_REORDER_RULE", "Max quantity cannot be less than min quantity")
	}
	return &ReorderRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		ReorderPoint:        reorderPoint,
		MinQuantity:         minQuantity,
		MaxQuantity:         maxQuantity,
		SafetyStock:         safetyStock,
		Active:              true,
	}, nil
}

// EffectiveReorderPoint is the reorder point adjusted for safety stock.
func (r *ReorderRule) EffectiveReorderPoint() int64 {
	return r.ReorderPoint + r.SafetyStock
}

// ReplenishmentEvaluation is the Replenishment Controller's pure-function
// projection for one rule against one inventory snapshot (§4.I).
type ReplenishmentEvaluation struct {
	RuleID                 uuid.UUID
	ProjectedQuantity      int64
	EffectiveReorderPoint  int64
	Triggered              bool
	SuggestedOrderQuantity int64
}

// Evaluate computes projected_quantity = available + incoming_committed -
// reserved, compares it against the effective reorder point, and - when
// triggered - the suggested order quantity:
// max(max_quantity + safety_stock - projected_quantity, min_quantity).
func (r *ReorderRule) Evaluate(available, reserved, incomingCommitted int64) ReplenishmentEvaluation {
	projected := available + incomingCommitted - reserved
	effective := r.EffectiveReorderPoint()

	eval := ReplenishmentEvaluation{
		RuleID:                r.ID,
		ProjectedQuantity:     projected,
		EffectiveReorderPoint: effective,
	}

	if projected >= effective {
		return eval
	}

	eval.Triggered = true
	suggested := r.MaxQuantity + r.SafetyStock - projected
	if suggested < r.MinQuantity {
		suggested = r.MinQuantity
	}
	eval.SuggestedOrderQuantity = suggested
	return eval
}
