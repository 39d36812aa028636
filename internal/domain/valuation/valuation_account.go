package valuation

import (
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is a pluggable costing method selectable per product (§4.E).
type Method string

const (
	MethodFIFO     Method = "fifo"
	MethodAVCO     Method = "avco"
	MethodStandard Method = "standard"
)

// CostLayer is one FIFO receipt layer: a quantity received at a point in
// time at a specific unit cost, consumed oldest-first.
type CostLayer struct {
	shared.BaseEntity
	ValuationAccountID uuid.UUID
	Quantity           decimal.Decimal
	UnitCost           decimal.Decimal
	ReceivedAt         time.Time
}

// ValuationAccount is the aggregate root tracking running quantity, value,
// and unit cost for one (warehouse, product) costing scope under a single
// active method (§4.E). Invariant I-9: TotalValue is always the algebraic
// sum of every value delta recorded in the account's history, and
// TotalQuantity the algebraic sum of every quantity delta. Receipts,
// deliveries and adjustments add or subtract deltas; Revalue sets
// TotalValue to TotalQuantity times the new cost, and its history row
// records the prior and new values, so that difference is its delta.
type ValuationAccount struct {
	shared.TenantAggregateRoot
	WarehouseID   uuid.UUID
	ProductID     uuid.UUID
	Method        Method
	TotalQuantity decimal.Decimal
	TotalValue    decimal.Decimal
	LastUnitCost  decimal.Decimal // the unit cost in effect when TotalQuantity last hit zero
	StandardCost  decimal.Decimal // only meaningful when Method == MethodStandard
	Layers        []CostLayer     // only populated/consumed when Method == MethodFIFO
}

// NewValuationAccount creates a new valuation account for a warehouse/product
// scope under the given method. standardCost is ignored unless method is
// MethodStandard.
func NewValuationAccount(tenantID, warehouseID, productID uuid.UUID, method Method, standardCost decimal.Decimal) (*ValuationAccount, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	switch method {
	case MethodFIFO, MethodAVCO, MethodStandard:
	default:
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown valuation method: "+string(method))
	}
	if method == MethodStandard && standardCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Standard cost cannot be negative")
	}

	return &ValuationAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		WarehouseID:         warehouseID,
		ProductID:           productID,
		Method:              method,
		TotalQuantity:       decimal.Zero,
		TotalValue:          decimal.Zero,
		StandardCost:        standardCost,
		Layers:              make([]CostLayer, 0),
	}, nil
}

// RunningUnitCost is the displayed unit cost: total_value / total_quantity
// when stock remains, else the last known unit cost (§4.E).
func (v *ValuationAccount) RunningUnitCost() decimal.Decimal {
	if v.Method == MethodStandard {
		return v.StandardCost
	}
	if v.TotalQuantity.IsPositive() {
		return v.TotalValue.Div(v.TotalQuantity)
	}
	return v.LastUnitCost
}

// ApplyReceipt books an incoming receipt of qty units at unitCost, returning
// the ValuationHistory row describing the transition.
func (v *ValuationAccount) ApplyReceipt(qty, unitCost decimal.Decimal, receivedAt time.Time) (*ValuationHistory, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	priorQty, priorValue, priorUnitCost := v.TotalQuantity, v.TotalValue, v.RunningUnitCost()
	var valueDelta decimal.Decimal
	var variance decimal.Decimal

	switch v.Method {
	case MethodFIFO:
		v.Layers = append(v.Layers, CostLayer{
			BaseEntity:          shared.NewBaseEntity(),
			ValuationAccountID:  v.ID,
			Quantity:            qty,
			UnitCost:            unitCost,
			ReceivedAt:          receivedAt,
		})
		valueDelta = qty.Mul(unitCost)
	case MethodAVCO:
		oldQty, oldCost := v.TotalQuantity, v.RunningUnitCost()
		newQty := oldQty.Add(qty)
		newCost := oldQty.Mul(oldCost).Add(qty.Mul(unitCost)).Div(newQty)
		valueDelta = newQty.Mul(newCost).Sub(v.TotalValue)
		v.LastUnitCost = newCost
	case MethodStandard:
		valueDelta = qty.Mul(v.StandardCost)
		variance = unitCost.Sub(v.StandardCost).Mul(qty)
	}

	v.TotalQuantity = v.TotalQuantity.Add(qty)
	v.TotalValue = v.TotalValue.Add(valueDelta)
	if v.Method != MethodAVCO {
		v.LastUnitCost = v.RunningUnitCost()
	}

	v.IncrementVersion()
	v.AddDomainEvent(NewValuationReceiptBookedEvent(v, qty, unitCost))
	history := NewValuationHistory(v.TenantID, v.ID, HistoryKindReceipt, priorQty, v.TotalQuantity, priorValue, v.TotalValue, priorUnitCost, v.RunningUnitCost())
	history.Variance = variance
	return history, nil
}

// ApplyDelivery books an outgoing delivery of qty units, consuming FIFO
// layers oldest-first when Method is MethodFIFO, or decrementing quantity
// and value at the running cost otherwise. Returns shared.ErrInsufficientStock
// if qty exceeds TotalQuantity.
func (v *ValuationAccount) ApplyDelivery(qty decimal.Decimal) (*ValuationHistory, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Delivery quantity must be positive")
	}
	if qty.GreaterThan(v.TotalQuantity) {
		return nil, shared.ErrInsufficientStock
	}

	priorQty, priorValue, priorUnitCost := v.TotalQuantity, v.TotalValue, v.RunningUnitCost()
	var valueDelta decimal.Decimal

	switch v.Method {
	case MethodFIFO:
		remaining := qty
		consumedValue := decimal.Zero
		kept := v.Layers[:0]
		for _, layer := range v.Layers {
			if remaining.LessThanOrEqual(decimal.Zero) {
				kept = append(kept, layer)
				continue
			}
			consume := decimal.Min(remaining, layer.Quantity)
			consumedValue = consumedValue.Add(consume.Mul(layer.UnitCost))
			layer.Quantity = layer.Quantity.Sub(consume)
			remaining = remaining.Sub(consume)
			if layer.Quantity.IsPositive() {
				kept = append(kept, layer)
			}
		}
		v.Layers = kept
		valueDelta = consumedValue.Neg()
	case MethodAVCO:
		valueDelta = qty.Mul(priorUnitCost).Neg()
	case MethodStandard:
		valueDelta = qty.Mul(v.StandardCost).Neg()
	}

	v.TotalQuantity = v.TotalQuantity.Sub(qty)
	v.TotalValue = v.TotalValue.Add(valueDelta)
	v.LastUnitCost = priorUnitCost

	v.IncrementVersion()
	v.AddDomainEvent(NewValuationDeliveryBookedEvent(v, qty))
	history := NewValuationHistory(v.TenantID, v.ID, HistoryKindDelivery, priorQty, v.TotalQuantity, priorValue, v.TotalValue, priorUnitCost, v.RunningUnitCost())
	return history, nil
}

// Revalue replaces the running unit cost without changing quantity,
// collapsing any FIFO layers into a single layer at the new cost so a
// subsequent delivery consumes at the revalued figure.
func (v *ValuationAccount) Revalue(newUnitCost decimal.Decimal, at time.Time) (*ValuationHistory, error) {
	if newUnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	priorQty, priorValue, priorUnitCost := v.TotalQuantity, v.TotalValue, v.RunningUnitCost()

	v.TotalValue = v.TotalQuantity.Mul(newUnitCost)
	v.LastUnitCost = newUnitCost
	if v.Method == MethodFIFO && v.TotalQuantity.IsPositive() {
		v.Layers = []CostLayer{{
			BaseEntity:         shared.NewBaseEntity(),
			ValuationAccountID: v.ID,
			Quantity:           v.TotalQuantity,
			UnitCost:           newUnitCost,
			ReceivedAt:         at,
		}}
	}
	if v.Method == MethodStandard {
		v.StandardCost = newUnitCost
	}

	v.IncrementVersion()
	v.AddDomainEvent(NewValuationRevaluedEvent(v, priorUnitCost))
	return NewValuationHistory(v.TenantID, v.ID, HistoryKindRevaluation, priorQty, v.TotalQuantity, priorValue, v.TotalValue, priorUnitCost, v.RunningUnitCost()), nil
}

// Adjust books a direct quantity/value correction against the account
// outside the normal receipt/delivery flow (e.g. a stock taking difference
// or manual adjustment line that must also correct valuation). qtyDelta and
// valueDelta may each be positive or negative; reason is recorded for audit
// but not otherwise interpreted. Under FIFO a non-zero qtyDelta also
// changes the layers: a positive qtyDelta appends a layer of that quantity
// at the resulting running cost; a negative one replaces all layers with a
// single layer of the remaining quantity at the running cost, or clears
// them when no quantity remains. A value-only adjustment leaves the layers
// as they are.
func (v *ValuationAccount) Adjust(qtyDelta, valueDelta decimal.Decimal, reason string, at time.Time) (*ValuationHistory, error) {
	if qtyDelta.IsZero() && valueDelta.IsZero() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT", "Adjustment must change quantity or value")
	}
	newQty := v.TotalQuantity.Add(qtyDelta)
	if newQty.IsNegative() {
		return nil, shared.ErrInsufficientStock
	}

	priorQty, priorValue, priorUnitCost := v.TotalQuantity, v.TotalValue, v.RunningUnitCost()

	v.TotalQuantity = newQty
	v.TotalValue = v.TotalValue.Add(valueDelta)
	if v.TotalQuantity.IsPositive() {
		v.LastUnitCost = v.RunningUnitCost()
	}

	if v.Method == MethodFIFO && !qtyDelta.IsZero() {
		if qtyDelta.IsPositive() {
			v.Layers = append(v.Layers, CostLayer{
				BaseEntity:         shared.NewBaseEntity(),
				ValuationAccountID: v.ID,
				Quantity:           qtyDelta,
				UnitCost:           v.RunningUnitCost(),
				ReceivedAt:         at,
			})
		} else if v.TotalQuantity.IsPositive() {
			v.Layers = []CostLayer{{
				BaseEntity:         shared.NewBaseEntity(),
				ValuationAccountID: v.ID,
				Quantity:           v.TotalQuantity,
				UnitCost:           v.RunningUnitCost(),
				ReceivedAt:         at,
			}}
		} else {
			v.Layers = nil
		}
	}

	v.IncrementVersion()
	v.AddDomainEvent(NewValuationAdjustedEvent(v, qtyDelta, valueDelta, reason))
	return NewValuationHistory(v.TenantID, v.ID, HistoryKindAdjustment, priorQty, v.TotalQuantity, priorValue, v.TotalValue, priorUnitCost, v.RunningUnitCost()), nil
}

// SwitchMethod changes the active costing method, recording a method-change
// history row. Switching to FIFO from a non-FIFO method opens a single
// initial layer at the current running cost and quantity (§4.E closing
// paragraph).
func (v *ValuationAccount) SwitchMethod(newMethod Method, at time.Time) (*ValuationHistory, error) {
	switch newMethod {
	case MethodFIFO, MethodAVCO, MethodStandard:
	default:
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown valuation method: "+string(newMethod))
	}

	priorQty, priorValue, priorUnitCost := v.TotalQuantity, v.TotalValue, v.RunningUnitCost()
	priorMethod := v.Method

	if newMethod == MethodFIFO && v.Method != MethodFIFO && v.TotalQuantity.IsPositive() {
		v.Layers = []CostLayer{{
			BaseEntity:         shared.NewBaseEntity(),
			ValuationAccountID: v.ID,
			Quantity:           v.TotalQuantity,
			UnitCost:           priorUnitCost,
			ReceivedAt:         at,
		}}
	}
	if newMethod != MethodFIFO {
		v.Layers = nil
	}
	if newMethod == MethodStandard {
		v.StandardCost = priorUnitCost
	}

	v.Method = newMethod
	v.LastUnitCost = priorUnitCost

	v.IncrementVersion()
	v.AddDomainEvent(NewValuationMethodChangedEvent(v, priorMethod))
	return NewValuationHistory(v.TenantID, v.ID, HistoryKindMethodChange, priorQty, v.TotalQuantity, priorValue, v.TotalValue, priorUnitCost, v.RunningUnitCost()), nil
}
