package valuation

import (
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryKind identifies what kind of transition a ValuationHistory row
// records (§4.E).
type HistoryKind string

const (
	HistoryKindReceipt      HistoryKind = "receipt"
	HistoryKindDelivery     HistoryKind = "delivery"
	HistoryKindAdjustment   HistoryKind = "adjustment"
	HistoryKindRevaluation  HistoryKind = "revaluation"
	HistoryKindMethodChange HistoryKind = "method_change"
)

// ValuationHistory is an immutable audit row capturing a ValuationAccount's
// quantity/value/unit-cost transition. Rows are append-only: nothing ever
// updates or deletes a ValuationHistory entry once written.
type ValuationHistory struct {
	shared.BaseEntity
	TenantID           uuid.UUID
	ValuationAccountID uuid.UUID
	Kind               HistoryKind
	PriorQuantity      decimal.Decimal
	NewQuantity        decimal.Decimal
	PriorValue         decimal.Decimal
	NewValue           decimal.Decimal
	PriorUnitCost      decimal.Decimal
	NewUnitCost        decimal.Decimal
	// Variance is only set for MethodStandard receipts: the difference
	// between actual receipt cost and the standard cost, times quantity.
	// It is booked to history but never perturbs the running cost.
	Variance decimal.Decimal
}

// NewValuationHistory creates a new audit row for a valuation transition.
func NewValuationHistory(tenantID, accountID uuid.UUID, kind HistoryKind, priorQty, newQty, priorValue, newValue, priorUnitCost, newUnitCost decimal.Decimal) *ValuationHistory {
	return &ValuationHistory{
		BaseEntity:         shared.NewBaseEntity(),
		TenantID:           tenantID,
		ValuationAccountID: accountID,
		Kind:               kind,
		PriorQuantity:      priorQty,
		NewQuantity:        newQty,
		PriorValue:         priorValue,
		NewValue:           newValue,
		PriorUnitCost:      priorUnitCost,
		NewUnitCost:        newUnitCost,
		Variance:           decimal.Zero,
	}
}

// QuantityDelta is NewQuantity - PriorQuantity (I-9).
func (h *ValuationHistory) QuantityDelta() decimal.Decimal {
	return h.NewQuantity.Sub(h.PriorQuantity)
}

// ValueDelta is NewValue - PriorValue (I-9).
func (h *ValuationHistory) ValueDelta() decimal.Decimal {
	return h.NewValue.Sub(h.PriorValue)
}
