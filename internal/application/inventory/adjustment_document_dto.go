package inventory

import (
	"time"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateAdjustmentDocumentRequest represents a request to open a new draft
// adjustment document.
type CreateAdjustmentDocumentRequest struct {
	WarehouseID   uuid.UUID `json:"warehouse_id" binding:"required"`
	WarehouseName string    `json:"warehouse_name" binding:"required"`
	Reason        string    `json:"reason"`
	CreatedByID   uuid.UUID `json:"created_by_id" binding:"required"`
	CreatedByName string    `json:"created_by_name" binding:"required"`
}

// AddAdjustmentLineRequest represents a request to add a correction line to
// a draft adjustment document. DeltaQuantityMinor is signed: positive values
// increase stock, negative values decrease it.
type AddAdjustmentLineRequest struct {
	ProductID          uuid.UUID `json:"product_id" binding:"required"`
	DeltaQuantityMinor int64     `json:"delta_quantity" binding:"required"`
	UnitCostMinor      int64     `json:"unit_cost"`
	Remark             string    `json:"remark"`
}

// CancelAdjustmentDocumentRequest represents a request to cancel a draft
// adjustment document.
type CancelAdjustmentDocumentRequest struct {
	Reason string `json:"reason"`
}

// AdjustmentDocumentListFilter represents filter options for listing
// adjustment documents.
type AdjustmentDocumentListFilter struct {
	Search      string                              `form:"search"`
	WarehouseID *uuid.UUID                          `form:"warehouse_id"`
	Status      *inventory.AdjustmentDocumentStatus `form:"status"`
	Page        int                                 `form:"page" binding:"min=1"`
	PageSize    int                                 `form:"page_size" binding:"min=1,max=100"`
	OrderBy     string                              `form:"order_by"`
	OrderDir    string                              `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AdjustmentDocumentLineResponse represents a single line in API responses.
type AdjustmentDocumentLineResponse struct {
	ID                 uuid.UUID `json:"id"`
	ProductID          uuid.UUID `json:"product_id"`
	WarehouseID        uuid.UUID `json:"warehouse_id"`
	DeltaQuantityMinor int64     `json:"delta_quantity"`
	UnitCostMinor      int64     `json:"unit_cost"`
	Remark             string    `json:"remark"`
	Posted             bool      `json:"posted"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AdjustmentDocumentResponse represents an adjustment document in API responses.
type AdjustmentDocumentResponse struct {
	ID             uuid.UUID                          `json:"id"`
	TenantID       uuid.UUID                          `json:"tenant_id"`
	DocumentNumber string                             `json:"document_number"`
	WarehouseID    uuid.UUID                          `json:"warehouse_id"`
	WarehouseName  string                             `json:"warehouse_name"`
	Status         inventory.AdjustmentDocumentStatus `json:"status"`
	Reason         string                             `json:"reason"`
	CreatedByID    uuid.UUID                          `json:"created_by_id"`
	CreatedByName  string                             `json:"created_by_name"`
	PostedAt       *time.Time                         `json:"posted_at,omitempty"`
	CancelledAt    *time.Time                         `json:"cancelled_at,omitempty"`
	CancelReason   string                             `json:"cancel_reason,omitempty"`
	Lines          []AdjustmentDocumentLineResponse   `json:"lines"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
	Version        int                                `json:"version"`
}

// AdjustmentDocumentListResponse represents a summary row in list views.
type AdjustmentDocumentListResponse struct {
	ID             uuid.UUID                         `json:"id"`
	DocumentNumber string                             `json:"document_number"`
	WarehouseID    uuid.UUID                          `json:"warehouse_id"`
	WarehouseName  string                             `json:"warehouse_name"`
	Status         inventory.AdjustmentDocumentStatus `json:"status"`
	LineCount      int                                `json:"line_count"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

// ToAdjustmentDocumentResponse converts a domain AdjustmentDocument to its API response.
func ToAdjustmentDocumentResponse(d *inventory.AdjustmentDocument) AdjustmentDocumentResponse {
	lines := make([]AdjustmentDocumentLineResponse, len(d.Lines))
	for i, line := range d.Lines {
		lines[i] = AdjustmentDocumentLineResponse{
			ID:                 line.ID,
			ProductID:          line.ProductID,
			WarehouseID:        line.WarehouseID,
			DeltaQuantityMinor: shared.DecimalToQuantityMinor(line.DeltaQuantity),
			UnitCostMinor:      shared.DecimalToMoneyMinor(line.UnitCost),
			Remark:             line.Remark,
			Posted:             line.Posted,
			CreatedAt:          line.CreatedAt,
			UpdatedAt:          line.UpdatedAt,
		}
	}

	return AdjustmentDocumentResponse{
		ID:             d.ID,
		TenantID:       d.TenantID,
		DocumentNumber: d.DocumentNumber,
		WarehouseID:    d.WarehouseID,
		WarehouseName:  d.WarehouseName,
		Status:         d.Status,
		Reason:         d.Reason,
		CreatedByID:    d.CreatedByID,
		CreatedByName:  d.CreatedByName,
		PostedAt:       d.PostedAt,
		CancelledAt:    d.CancelledAt,
		CancelReason:   d.CancelReason,
		Lines:          lines,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Version:        d.Version,
	}
}

// ToAdjustmentDocumentListResponses converts a slice of domain documents to list responses.
func ToAdjustmentDocumentListResponses(docs []inventory.AdjustmentDocument) []AdjustmentDocumentListResponse {
	responses := make([]AdjustmentDocumentListResponse, len(docs))
	for i, d := range docs {
		responses[i] = AdjustmentDocumentListResponse{
			ID:             d.ID,
			DocumentNumber: d.DocumentNumber,
			WarehouseID:    d.WarehouseID,
			WarehouseName:  d.WarehouseName,
			Status:         d.Status,
			LineCount:      len(d.Lines),
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
		}
	}
	return responses
}
