package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// InventorySortFields contains allowed sort fields for inventory
var InventorySortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"product_id":     true,
	"warehouse_id":   true,
	"quantity":       true,
	"available_qty":  true,
	"locked_qty":     true,
	"cost":           true,
	"product_code":   true,
	"product_name":   true,
	"warehouse_name": true,
}

// InventoryTransactionSortFields contains allowed sort fields for inventory transactions
var InventoryTransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transaction_type": true,
	"product_id":       true,
	"warehouse_id":     true,
	"quantity":         true,
	"reference_type":   true,
	"reference_id":     true,
}

// StockBatchSortFields contains allowed sort fields for stock batches
var StockBatchSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"batch_number":    true,
	"product_id":      true,
	"warehouse_id":    true,
	"quantity":        true,
	"available_qty":   true,
	"cost_price":      true,
	"production_date": true,
	"expiry_date":     true,
}

// StockTakingSortFields contains allowed sort fields for stock taking
var StockTakingSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"taking_number":  true,
	"taking_date":    true,
	"status":         true,
	"warehouse_id":   true,
	"warehouse_name": true,
	"total_items":    true,
}

// AdjustmentDocumentSortFields contains allowed sort fields for adjustment documents
var AdjustmentDocumentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"document_number": true,
	"status":          true,
	"warehouse_id":    true,
	"warehouse_name":  true,
}
