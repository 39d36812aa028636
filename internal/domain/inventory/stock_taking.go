package inventory

import (
	"fmt"
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockTakingStatus represents the status of a stock taking document
type StockTakingStatus string

const (
	StockTakingStatusDraft      StockTakingStatus = "draft"
	StockTakingStatusInProgress StockTakingStatus = "in_progress"
	StockTakingStatusCompleted  StockTakingStatus = "completed"
	StockTakingStatusCancelled  StockTakingStatus = "cancelled"
)

// IsValid checks if the status is a valid StockTakingStatus
func (s StockTakingStatus) IsValid() bool {
	switch s {
	case StockTakingStatusDraft, StockTakingStatusInProgress, StockTakingStatusCompleted, StockTakingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of StockTakingStatus
func (s StockTakingStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s StockTakingStatus) CanTransitionTo(target StockTakingStatus) bool {
	switch s {
	case StockTakingStatusDraft:
		return target == StockTakingStatusInProgress || target == StockTakingStatusCancelled
	case StockTakingStatusInProgress:
		return target == StockTakingStatusCompleted || target == StockTakingStatusCancelled
	case StockTakingStatusCompleted, StockTakingStatusCancelled:
		return false // Terminal states
	}
	return false
}

// StockTakingItem represents a line item in a stock taking document
type StockTakingItem struct {
	ID               uuid.UUID
	StockTakingID    uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	ProductCode      string
	Unit             string
	SystemQuantity   decimal.Decimal // Quantity in system (snapshotted as expected_quantity at creation)
	ActualQuantity   decimal.Decimal // Quantity from physical count (nullable until counted)
	DifferenceQty    decimal.Decimal // Actual - System
	UnitCost         decimal.Decimal // Cost per unit at count time
	DifferenceAmount decimal.Decimal // Difference * UnitCost
	Counted          bool            // Whether item has been counted
	Posted           bool            // Whether this item's difference has been posted as a stock move
	Remark           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewStockTakingItem creates a new stock taking item
func NewStockTakingItem(stockTakingID, productID uuid.UUID, productName, productCode, unit string, systemQty, unitCost decimal.Decimal) *StockTakingItem {
	now := time.Now()
	return &StockTakingItem{
		ID:             shared.NewID(),
		StockTakingID:  stockTakingID,
		ProductID:      productID,
		ProductName:    productName,
		ProductCode:    productCode,
		Unit:           unit,
		SystemQuantity: systemQty,
		UnitCost:       unitCost,
		Counted:        false,
		Posted:         false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordCount records the actual count for this item
func (i *StockTakingItem) RecordCount(actualQty decimal.Decimal, remark string) error {
	if actualQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Actual quantity cannot be negative")
	}

	i.ActualQuantity = actualQty
	i.DifferenceQty = actualQty.Sub(i.SystemQuantity)
	i.DifferenceAmount = i.DifferenceQty.Mul(i.UnitCost)
	i.Counted = true
	i.Remark = remark
	i.UpdatedAt = time.Now()

	return nil
}

// HasDifference returns true if there is a difference between system and actual
func (i *StockTakingItem) HasDifference() bool {
	return i.Counted && !i.DifferenceQty.IsZero()
}

// StockTaking represents a stock taking (inventory count) document
// It is the aggregate root for stock taking operations
type StockTaking struct {
	shared.TenantAggregateRoot
	TakingNumber    string
	WarehouseID     uuid.UUID
	WarehouseName   string
	Status          StockTakingStatus
	TakingDate      time.Time  // Date of stock taking
	StartedAt       *time.Time // When counting started
	CompletedAt     *time.Time // When counting completed
	FinalizedAt     *time.Time // When differences were posted and the count closed out
	FinalizedByID   *uuid.UUID // User who finalized
	FinalizedByName string     // Name of finalizer
	CreatedByID     uuid.UUID
	CreatedByName   string
	TotalItems      int             // Total number of items
	CountedItems    int             // Number of items counted
	DifferenceItems int             // Number of items with difference
	TotalDifference decimal.Decimal // Total difference amount
	FinalizeNote    string          // Note recorded at finalize time
	Remark          string
	Items           []StockTakingItem
}

// NewStockTaking creates a new stock taking document
func NewStockTaking(tenantID, warehouseID uuid.UUID, warehouseName, takingNumber string, takingDate time.Time, createdByID uuid.UUID, createdByName string) (*StockTaking, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if warehouseName == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_NAME", "Warehouse name cannot be empty")
	}
	if takingNumber == "" {
		return nil, shared.NewDomainError("INVALID_TAKING_NUMBER", "Taking number cannot be empty")
	}
	if createdByID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}

	st := &StockTaking{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TakingNumber:        takingNumber,
		WarehouseID:         warehouseID,
		WarehouseName:       warehouseName,
		Status:              StockTakingStatusDraft,
		TakingDate:          takingDate,
		CreatedByID:         createdByID,
		CreatedByName:       createdByName,
		TotalItems:          0,
		CountedItems:        0,
		DifferenceItems:     0,
		TotalDifference:     decimal.Zero,
		Items:               make([]StockTakingItem, 0),
	}

	st.AddDomainEvent(NewStockTakingCreatedEvent(st))

	return st, nil
}

// AddItem adds an item to the stock taking document
func (st *StockTaking) AddItem(productID uuid.UUID, productName, productCode, unit string, systemQty, unitCost decimal.Decimal) error {
	if st.Status != StockTakingStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Can only add items in draft status")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	// Check for duplicate product
	for _, item := range st.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in stock taking")
		}
	}

	item := NewStockTakingItem(st.ID, productID, productName, productCode, unit, systemQty, unitCost)
	st.Items = append(st.Items, *item)
	st.TotalItems++
	st.UpdatedAt = time.Now()
	st.IncrementVersion()

	return nil
}

// RemoveItem removes an item from the stock taking document
func (st *StockTaking) RemoveItem(productID uuid.UUID) error {
	if st.Status != StockTakingStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Can only remove items in draft status")
	}

	for i, item := range st.Items {
		if item.ProductID == productID {
			st.Items = append(st.Items[:i], st.Items[i+1:]...)
			st.TotalItems--
			st.UpdatedAt = time.Now()
			st.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Product not found in stock taking")
}

// StartCounting transitions the stock taking to in_progress status
func (st *StockTaking) StartCounting() error {
	if !st.Status.CanTransitionTo(StockTakingStatusInProgress) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to in_progress", st.Status))
	}
	if st.TotalItems == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot start counting with no items")
	}

	now := time.Now()
	st.Status = StockTakingStatusInProgress
	st.StartedAt = &now
	st.UpdatedAt = now
	st.IncrementVersion()

	st.AddDomainEvent(NewStockTakingStartedEvent(st))

	return nil
}

// RecordItemCount records the actual count for an item
func (st *StockTaking) RecordItemCount(productID uuid.UUID, actualQty decimal.Decimal, remark string) error {
	if st.Status != StockTakingStatusInProgress {
		return shared.NewDomainError("INVALID_STATUS", "Can only record counts in in_progress status")
	}

	for i := range st.Items {
		if st.Items[i].ProductID == productID {
			wasCounted := st.Items[i].Counted

			if err := st.Items[i].RecordCount(actualQty, remark); err != nil {
				return err
			}

			// Update counted items count
			if !wasCounted {
				st.CountedItems++
			}

			st.recalculateTotals()
			st.UpdatedAt = time.Now()
			st.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Product not found in stock taking")
}

// recalculateTotals recalculates the totals after a count is recorded
func (st *StockTaking) recalculateTotals() {
	st.DifferenceItems = 0
	st.TotalDifference = decimal.Zero

	for _, item := range st.Items {
		if item.Counted && item.HasDifference() {
			st.DifferenceItems++
			st.TotalDifference = st.TotalDifference.Add(item.DifferenceAmount)
		}
	}
}

// MarkItemPosted records that an item's difference has been applied to the
// Stock Ledger as an adjustment move. Used by the application layer while
// finalizing, so a partially-failed finalize can be retried without
// reapplying items that already succeeded.
func (st *StockTaking) MarkItemPosted(productID uuid.UUID) error {
	for i := range st.Items {
		if st.Items[i].ProductID == productID {
			st.Items[i].Posted = true
			st.Items[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Product not found in stock taking")
}

// AllDifferencesPosted returns true once every item with a non-zero
// difference has had its move applied. Items with no difference need no
// move and never block finalize.
func (st *StockTaking) AllDifferencesPosted() bool {
	for _, item := range st.Items {
		if item.HasDifference() && !item.Posted {
			return false
		}
	}
	return true
}

// Finalize closes out the count: every non-zero (actual - expected)
// difference must already have been posted as an adjustment-type stock
// move (via MarkItemPosted, applied by the application layer in a single
// transaction) before the status can move to completed. Finalize itself
// only performs the state transition and is safe to call again on an
// already-completed stock taking (a no-op), mirroring the idempotent
// posting contract used by adjustment documents.
func (st *StockTaking) Finalize(operatorID *uuid.UUID, operatorName, note string) error {
	if st.Status == StockTakingStatusCompleted {
		return nil
	}
	if !st.Status.CanTransitionTo(StockTakingStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to completed", st.Status))
	}
	if st.CountedItems != st.TotalItems {
		return shared.NewDomainError("INCOMPLETE_COUNT", fmt.Sprintf("Not all items have been counted (%d/%d)", st.CountedItems, st.TotalItems))
	}
	if !st.AllDifferencesPosted() {
		return shared.NewDomainError("INCOMPLETE_FINALIZE", "Not every difference has been posted to the Stock Ledger yet")
	}

	now := time.Now()
	st.Status = StockTakingStatusCompleted
	st.CompletedAt = &now
	st.FinalizedAt = &now
	st.FinalizedByID = operatorID
	st.FinalizedByName = operatorName
	st.FinalizeNote = note
	st.UpdatedAt = now
	st.IncrementVersion()

	st.AddDomainEvent(NewStockTakingFinalizedEvent(st))

	return nil
}

// Cancel cancels the stock taking
func (st *StockTaking) Cancel(reason string) error {
	if !st.Status.CanTransitionTo(StockTakingStatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to cancelled", st.Status))
	}

	st.Status = StockTakingStatusCancelled
	st.Remark = reason
	st.UpdatedAt = time.Now()
	st.IncrementVersion()

	st.AddDomainEvent(NewStockTakingCancelledEvent(st))

	return nil
}

// SetRemark sets the remark for the stock taking
func (st *StockTaking) SetRemark(remark string) {
	st.Remark = remark
	st.UpdatedAt = time.Now()
}

// IsComplete returns true if all items have been counted
func (st *StockTaking) IsComplete() bool {
	return st.CountedItems == st.TotalItems && st.TotalItems > 0
}

// GetProgress returns the counting progress as a percentage
func (st *StockTaking) GetProgress() float64 {
	if st.TotalItems == 0 {
		return 0
	}
	return float64(st.CountedItems) / float64(st.TotalItems) * 100
}

// GetItemsWithDifference returns items that have a difference between system and actual quantity
func (st *StockTaking) GetItemsWithDifference() []StockTakingItem {
	result := make([]StockTakingItem, 0)
	for _, item := range st.Items {
		if item.HasDifference() {
			result = append(result, item)
		}
	}
	return result
}

// GetUncountedItems returns items that have not been counted yet
func (st *StockTaking) GetUncountedItems() []StockTakingItem {
	result := make([]StockTakingItem, 0)
	for _, item := range st.Items {
		if !item.Counted {
			result = append(result, item)
		}
	}
	return result
}
