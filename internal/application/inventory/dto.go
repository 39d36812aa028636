package inventory

import (
	"time"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemResponse represents an inventory item in API responses.
//
// Quantity and cost fields are wire-encoded as signed 64-bit minor-unit
// integers (§6); decimal.Decimal is only the working type inside the
// domain and application layers.
type InventoryItemResponse struct {
	ID                      uuid.UUID `json:"id"`
	TenantID                uuid.UUID `json:"tenant_id"`
	WarehouseID             uuid.UUID `json:"warehouse_id"`
	ProductID               uuid.UUID `json:"product_id"`
	AvailableQuantityMinor  int64     `json:"available_quantity"`
	LockedQuantityMinor     int64     `json:"locked_quantity"`
	TotalQuantityMinor      int64     `json:"total_quantity"`
	UnitCostMinor           int64     `json:"unit_cost"`
	TotalValueMinor         int64     `json:"total_value"`
	MinQuantityMinor        int64     `json:"min_quantity"`
	MaxQuantityMinor        int64     `json:"max_quantity"`
	IsBelowMinimum          bool      `json:"is_below_minimum"`
	IsAboveMaximum          bool      `json:"is_above_maximum"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
	Version                 int       `json:"version"`
}

// InventoryListItemResponse represents an inventory list item
type InventoryListItemResponse struct {
	ID                     uuid.UUID `json:"id"`
	WarehouseID            uuid.UUID `json:"warehouse_id"`
	ProductID               uuid.UUID `json:"product_id"`
	AvailableQuantityMinor  int64     `json:"available_quantity"`
	LockedQuantityMinor     int64     `json:"locked_quantity"`
	TotalQuantityMinor      int64     `json:"total_quantity"`
	UnitCostMinor           int64     `json:"unit_cost"`
	TotalValueMinor         int64     `json:"total_value"`
	MinQuantityMinor        int64     `json:"min_quantity"`
	IsBelowMinimum          bool      `json:"is_below_minimum"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// InventoryListFilter represents filter options for inventory list
type InventoryListFilter struct {
	Search       string     `form:"search"`
	WarehouseID  *uuid.UUID `form:"warehouse_id"`
	ProductID    *uuid.UUID `form:"product_id"`
	BelowMinimum *bool      `form:"below_minimum"`
	HasStock     *bool      `form:"has_stock"`
	MinQuantity  *int64     `form:"min_quantity"`
	MaxQuantity  *int64     `form:"max_quantity"`
	Page         int        `form:"page" binding:"min=1"`
	PageSize     int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// IncreaseStockRequest represents a request to increase stock
type IncreaseStockRequest struct {
	WarehouseID     uuid.UUID  `json:"warehouse_id" binding:"required"`
	ProductID       uuid.UUID  `json:"product_id" binding:"required"`
	QuantityMinor   int64      `json:"quantity" binding:"required"`
	UnitCostMinor   int64      `json:"unit_cost" binding:"required"`
	SourceType      string     `json:"source_type" binding:"required"` // PURCHASE_ORDER, SALES_RETURN, INITIAL_STOCK, etc.
	SourceID        string     `json:"source_id" binding:"required"`
	BatchNumber     string     `json:"batch_number"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	Reference       string     `json:"reference"`
	Reason          string     `json:"reason"`
	OperatorID      *uuid.UUID `json:"operator_id"`
	// IdempotencyKey, when set, makes a replayed request return the
	// previously-recorded move instead of double-posting it (I-4).
	IdempotencyKey string `json:"idempotency_key"`
}

// LockStockRequest represents a request to lock stock
type LockStockRequest struct {
	WarehouseID   uuid.UUID  `json:"warehouse_id" binding:"required"`
	ProductID     uuid.UUID  `json:"product_id" binding:"required"`
	QuantityMinor int64      `json:"quantity" binding:"required"`
	SourceType    string     `json:"source_type" binding:"required"` // e.g., "sales_order"
	SourceID      string     `json:"source_id" binding:"required"`
	ExpireAt      *time.Time `json:"expire_at"` // Optional, defaults to 30 minutes
}

// LockStockResponse represents the response after locking stock
type LockStockResponse struct {
	LockID          uuid.UUID `json:"lock_id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	ProductID       uuid.UUID `json:"product_id"`
	QuantityMinor   int64     `json:"quantity"`
	ExpireAt        time.Time `json:"expire_at"`
	SourceType      string    `json:"source_type"`
	SourceID        string    `json:"source_id"`
}

// UnlockStockRequest represents a request to unlock stock
type UnlockStockRequest struct {
	LockID uuid.UUID `json:"lock_id" binding:"required"`
}

// DecreaseStockRequest represents a request to directly decrease available
// stock without a prior lock (e.g. purchase returns shipped back to a
// supplier). Not bound directly from an HTTP body; callers construct it
// in Go, so it keeps decimal.Decimal rather than minor-unit integers.
type DecreaseStockRequest struct {
	WarehouseID    uuid.UUID
	ProductID      uuid.UUID
	Quantity       decimal.Decimal
	SourceType     string
	SourceID       string
	Reference      string
	Reason         string
	OperatorID     *uuid.UUID
	IdempotencyKey string
}

// DeductStockRequest represents a request to deduct locked stock
type DeductStockRequest struct {
	LockID     uuid.UUID  `json:"lock_id" binding:"required"`
	SourceType string     `json:"source_type" binding:"required"` // e.g., "SALES_ORDER"
	SourceID   string     `json:"source_id" binding:"required"`
	Reference  string     `json:"reference"`
	OperatorID *uuid.UUID `json:"operator_id"`
}

// AdjustStockRequest represents a request to adjust stock
type AdjustStockRequest struct {
	WarehouseID          uuid.UUID  `json:"warehouse_id" binding:"required"`
	ProductID            uuid.UUID  `json:"product_id" binding:"required"`
	ActualQuantityMinor  int64      `json:"actual_quantity" binding:"required"`
	Reason               string     `json:"reason" binding:"required,min=1,max=255"`
	SourceType           string     `json:"source_type"` // defaults to MANUAL_ADJUSTMENT
	SourceID             string     `json:"source_id"`   // auto-generated if empty
	OperatorID           *uuid.UUID `json:"operator_id"`
	IdempotencyKey       string     `json:"idempotency_key"`
}

// SetThresholdsRequest represents a request to set min/max quantity thresholds
type SetThresholdsRequest struct {
	WarehouseID      uuid.UUID `json:"warehouse_id" binding:"required"`
	ProductID        uuid.UUID `json:"product_id" binding:"required"`
	MinQuantityMinor *int64    `json:"min_quantity"`
	MaxQuantityMinor *int64    `json:"max_quantity"`
}

// StockLockResponse represents a stock lock in API responses
type StockLockResponse struct {
	ID              uuid.UUID `json:"id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	QuantityMinor   int64     `json:"quantity"`
	SourceType      string    `json:"source_type"`
	SourceID        string    `json:"source_id"`
	ExpireAt        time.Time `json:"expire_at"`
	Released        bool      `json:"released"`
	Consumed        bool      `json:"consumed"`
	IsActive        bool      `json:"is_active"`
	IsExpired       bool      `json:"is_expired"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionResponse represents an inventory transaction in API responses
type TransactionResponse struct {
	ID                   uuid.UUID  `json:"id"`
	TenantID             uuid.UUID  `json:"tenant_id"`
	InventoryItemID      uuid.UUID  `json:"inventory_item_id"`
	WarehouseID          uuid.UUID  `json:"warehouse_id"`
	ProductID            uuid.UUID  `json:"product_id"`
	TransactionType      string     `json:"transaction_type"`
	QuantityMinor        int64      `json:"quantity"`
	SignedQuantityMinor  int64      `json:"signed_quantity"`
	UnitCostMinor        int64      `json:"unit_cost"`
	TotalCostMinor       int64      `json:"total_cost"`
	BalanceBeforeMinor   int64      `json:"balance_before"`
	BalanceAfterMinor    int64      `json:"balance_after"`
	SourceType           string     `json:"source_type"`
	SourceID             string     `json:"source_id"`
	SourceLineID         string     `json:"source_line_id,omitempty"`
	BatchID              *uuid.UUID `json:"batch_id,omitempty"`
	LockID               *uuid.UUID `json:"lock_id,omitempty"`
	Reference            string     `json:"reference,omitempty"`
	Reason               string     `json:"reason,omitempty"`
	OperatorID           *uuid.UUID `json:"operator_id,omitempty"`
	TransactionDate      time.Time  `json:"transaction_date"`
	CreatedAt            time.Time  `json:"created_at"`
}

// TransactionListFilter represents filter options for transaction list
type TransactionListFilter struct {
	WarehouseID     *uuid.UUID `form:"warehouse_id"`
	ProductID       *uuid.UUID `form:"product_id"`
	TransactionType string     `form:"transaction_type"`
	SourceType      string     `form:"source_type"`
	SourceID        string     `form:"source_id"`
	StartDate       *time.Time `form:"start_date"`
	EndDate         *time.Time `form:"end_date"`
	Page            int        `form:"page" binding:"min=1"`
	PageSize        int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy         string     `form:"order_by"`
	OrderDir        string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InventorySummaryResponse represents inventory summary statistics
type InventorySummaryResponse struct {
	TotalItems           int64              `json:"total_items"`
	TotalValueMinor      int64              `json:"total_value"`
	ItemsBelowMinimum    int64              `json:"items_below_minimum"`
	TotalAvailableMinor  int64              `json:"total_available"`
	TotalLockedMinor     int64              `json:"total_locked"`
	WarehouseBreakdown   []WarehouseSummary `json:"warehouse_breakdown,omitempty"`
}

// WarehouseSummary represents inventory summary for a warehouse
type WarehouseSummary struct {
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	ItemCount       int64     `json:"item_count"`
	TotalValueMinor int64     `json:"total_value"`
	BelowMinimum    int64     `json:"below_minimum"`
}

// ToInventoryItemResponse converts domain InventoryItem to response DTO
func ToInventoryItemResponse(item *inventory.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:                     item.ID,
		TenantID:               item.TenantID,
		WarehouseID:            item.WarehouseID,
		ProductID:              item.ProductID,
		AvailableQuantityMinor: shared.DecimalToQuantityMinor(item.AvailableQuantity),
		LockedQuantityMinor:    shared.DecimalToQuantityMinor(item.LockedQuantity),
		TotalQuantityMinor:     shared.DecimalToQuantityMinor(item.TotalQuantity()),
		UnitCostMinor:          shared.DecimalToMoneyMinor(item.UnitCost),
		TotalValueMinor:        shared.DecimalToMoneyMinor(item.GetTotalValue().Amount()),
		MinQuantityMinor:       shared.DecimalToQuantityMinor(item.MinQuantity),
		MaxQuantityMinor:       shared.DecimalToQuantityMinor(item.MaxQuantity),
		IsBelowMinimum:         item.IsBelowMinimum(),
		IsAboveMaximum:         item.IsAboveMaximum(),
		CreatedAt:              item.CreatedAt,
		UpdatedAt:              item.UpdatedAt,
		Version:                item.Version,
	}
}

// ToInventoryListItemResponse converts domain InventoryItem to list response DTO
func ToInventoryListItemResponse(item *inventory.InventoryItem) InventoryListItemResponse {
	return InventoryListItemResponse{
		ID:                     item.ID,
		WarehouseID:            item.WarehouseID,
		ProductID:              item.ProductID,
		AvailableQuantityMinor: shared.DecimalToQuantityMinor(item.AvailableQuantity),
		LockedQuantityMinor:    shared.DecimalToQuantityMinor(item.LockedQuantity),
		TotalQuantityMinor:     shared.DecimalToQuantityMinor(item.TotalQuantity()),
		UnitCostMinor:          shared.DecimalToMoneyMinor(item.UnitCost),
		TotalValueMinor:        shared.DecimalToMoneyMinor(item.GetTotalValue().Amount()),
		MinQuantityMinor:       shared.DecimalToQuantityMinor(item.MinQuantity),
		IsBelowMinimum:         item.IsBelowMinimum(),
		UpdatedAt:              item.UpdatedAt,
	}
}

// ToInventoryListItemResponses converts a slice of domain InventoryItems to list responses
func ToInventoryListItemResponses(items []inventory.InventoryItem) []InventoryListItemResponse {
	responses := make([]InventoryListItemResponse, len(items))
	for i := range items {
		responses[i] = ToInventoryListItemResponse(&items[i])
	}
	return responses
}

// ToStockLockResponse converts domain StockLock to response DTO
func ToStockLockResponse(lock *inventory.StockLock) StockLockResponse {
	return StockLockResponse{
		ID:              lock.ID,
		InventoryItemID: lock.InventoryItemID,
		QuantityMinor:   shared.DecimalToQuantityMinor(lock.Quantity),
		SourceType:      lock.SourceType,
		SourceID:        lock.SourceID,
		ExpireAt:        lock.ExpireAt,
		Released:        lock.Released,
		Consumed:        lock.Consumed,
		IsActive:        lock.IsActive(),
		IsExpired:       lock.IsExpired(),
		CreatedAt:       lock.CreatedAt,
	}
}

// ToStockLockResponses converts a slice of domain StockLocks to responses
func ToStockLockResponses(locks []inventory.StockLock) []StockLockResponse {
	responses := make([]StockLockResponse, len(locks))
	for i := range locks {
		responses[i] = ToStockLockResponse(&locks[i])
	}
	return responses
}

// ToTransactionResponse converts domain InventoryTransaction to response DTO
func ToTransactionResponse(tx *inventory.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                  tx.ID,
		TenantID:            tx.TenantID,
		InventoryItemID:     tx.InventoryItemID,
		WarehouseID:         tx.WarehouseID,
		ProductID:           tx.ProductID,
		TransactionType:     string(tx.TransactionType),
		QuantityMinor:       shared.DecimalToQuantityMinor(tx.Quantity),
		SignedQuantityMinor: shared.DecimalToQuantityMinor(tx.GetSignedQuantity()),
		UnitCostMinor:       shared.DecimalToMoneyMinor(tx.UnitCost),
		TotalCostMinor:      shared.DecimalToMoneyMinor(tx.TotalCost),
		BalanceBeforeMinor:  shared.DecimalToQuantityMinor(tx.BalanceBefore),
		BalanceAfterMinor:   shared.DecimalToQuantityMinor(tx.BalanceAfter),
		SourceType:          string(tx.SourceType),
		SourceID:            tx.SourceID,
		SourceLineID:        tx.SourceLineID,
		BatchID:             tx.BatchID,
		LockID:              tx.LockID,
		Reference:           tx.Reference,
		Reason:              tx.Reason,
		OperatorID:          tx.OperatorID,
		TransactionDate:     tx.TransactionDate,
		CreatedAt:           tx.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions to responses
func ToTransactionResponses(txs []inventory.InventoryTransaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = ToTransactionResponse(&txs[i])
	}
	return responses
}
