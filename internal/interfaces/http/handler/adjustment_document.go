package handler

import (
	inventoryapp "github.com/stockledger/platform/internal/application/inventory"
	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdjustmentDocumentHandler handles adjustment-document-related API endpoints
type AdjustmentDocumentHandler struct {
	BaseHandler
	service *inventoryapp.AdjustmentDocumentService
}

// NewAdjustmentDocumentHandler creates a new AdjustmentDocumentHandler
func NewAdjustmentDocumentHandler(service *inventoryapp.AdjustmentDocumentService) *AdjustmentDocumentHandler {
	return &AdjustmentDocumentHandler{
		service: service,
	}
}

// ===================== Request/Response Types for Swagger =====================

// CreateAdjustmentDocumentRequest represents a request to open a draft adjustment document
// @Description Request body for creating a new adjustment document
type CreateAdjustmentDocumentRequest struct {
	WarehouseID   string `json:"warehouse_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	WarehouseName string `json:"warehouse_name" binding:"required" example:"Main Warehouse"`
	Reason        string `json:"reason" example:"Cycle count correction"`
	CreatedByID   string `json:"created_by_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
	CreatedByName string `json:"created_by_name" binding:"required" example:"John Doe"`
}

// AddAdjustmentLineRequest represents a request to add a correction line
// @Description Request body for adding a line to an adjustment document. DeltaQuantity is signed.
type AddAdjustmentLineRequest struct {
	ProductID     string `json:"product_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440002"`
	DeltaQuantity int64  `json:"delta_quantity" binding:"required" example:"-200"`
	UnitCost      int64  `json:"unit_cost" example:"1550"`
	Remark        string `json:"remark" example:"2 units damaged"`
}

// CancelAdjustmentDocumentRequest represents a request to cancel a draft adjustment document
// @Description Request body for cancelling an adjustment document
type CancelAdjustmentDocumentRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"Created in error"`
}

// PostAdjustmentDocumentRequest represents a request to post an adjustment document
// @Description Request body for posting an adjustment document
type PostAdjustmentDocumentRequest struct {
	OperatorID string `json:"operator_id" example:"550e8400-e29b-41d4-a716-446655440003"`
}

// ===================== Query Handlers =====================

// GetByID godoc
// @Summary      Get adjustment document by ID
// @Description  Retrieve an adjustment document by its ID with all lines
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Adjustment Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.AdjustmentDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents/{id} [get]
func (h *AdjustmentDocumentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment document ID format")
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByDocumentNumber godoc
// @Summary      Get adjustment document by document number
// @Description  Retrieve an adjustment document by its document number
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        number path string true "Document number"
// @Success      200 {object} dto.Response{data=inventoryapp.AdjustmentDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents/number/{number} [get]
func (h *AdjustmentDocumentHandler) GetByDocumentNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Document number is required")
		return
	}

	result, err := h.service.GetByDocumentNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @Summary      List adjustment documents
// @Description  Retrieve a paginated list of adjustment documents with optional filtering
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        search query string false "Search term (document number, warehouse)"
// @Param        warehouse_id query string false "Filter by warehouse ID" format(uuid)
// @Param        status query string false "Filter by status" Enums(draft, posted, cancelled)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]inventoryapp.AdjustmentDocumentListResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents [get]
func (h *AdjustmentDocumentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter inventoryapp.AdjustmentDocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := inventory.AdjustmentDocumentStatus(statusStr)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid status value")
			return
		}
		filter.Status = &status
	}

	if whIDStr := c.Query("warehouse_id"); whIDStr != "" {
		whID, err := uuid.Parse(whIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		filter.WarehouseID = &whID
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ===================== Command Handlers =====================

// Create godoc
// @Summary      Create adjustment document
// @Description  Open a new draft adjustment document
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateAdjustmentDocumentRequest true "Adjustment document creation request"
// @Success      201 {object} dto.Response{data=inventoryapp.AdjustmentDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents [post]
func (h *AdjustmentDocumentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateAdjustmentDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	createdByID, err := uuid.Parse(req.CreatedByID)
	if err != nil {
		h.BadRequest(c, "Invalid creator ID format")
		return
	}

	appReq := inventoryapp.CreateAdjustmentDocumentRequest{
		WarehouseID:   warehouseID,
		WarehouseName: req.WarehouseName,
		Reason:        req.Reason,
		CreatedByID:   createdByID,
		CreatedByName: req.CreatedByName,
	}

	result, err := h.service.Create(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// AddLine godoc
// @Summary      Add a correction line
// @Description  Add a signed quantity correction line to a draft adjustment document
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Adjustment Document ID" format(uuid)
// @Param        request body AddAdjustmentLineRequest true "Line to add"
// @Success      200 {object} dto.Response{data=inventoryapp.AdjustmentDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents/{id}/lines [post]
func (h *AdjustmentDocumentHandler) AddLine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment document ID format")
		return
	}

	var req AddAdjustmentLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	appReq := inventoryapp.AddAdjustmentLineRequest{
		ProductID:          productID,
		DeltaQuantityMinor: req.DeltaQuantity,
		UnitCostMinor:      req.UnitCost,
		Remark:             req.Remark,
	}

	result, err := h.service.AddLine(c.Request.Context(), tenantID, id, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveLine godoc
// @Summary      Remove a correction line
// @Description  Remove a line from a draft adjustment document
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Adjustment Document ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.AdjustmentDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents/{id}/lines/{line_id} [delete]
func (h *AdjustmentDocumentHandler) RemoveLine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment document ID format")
		return
	}

	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	result, err := h.service.RemoveLine(c.Request.Context(), tenantID, id, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Post godoc
// @Summary      Post adjustment document
// @Description  Apply every unposted line to the Stock Ledger and transition the document to posted. Idempotent on the document identifier.
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Adjustment Document ID" format(uuid)
// @Param        request body PostAdjustmentDocumentRequest false "Posting request"
// @Success      200 {object} dto.Response{data=inventoryapp.AdjustmentDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents/{id}/post [post]
func (h *AdjustmentDocumentHandler) Post(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment document ID format")
		return
	}

	var req PostAdjustmentDocumentRequest
	_ = c.ShouldBindJSON(&req)

	var operatorID *uuid.UUID
	if req.OperatorID != "" {
		parsed, err := uuid.Parse(req.OperatorID)
		if err != nil {
			h.BadRequest(c, "Invalid operator ID format")
			return
		}
		operatorID = &parsed
	}

	result, err := h.service.Post(c.Request.Context(), tenantID, id, operatorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @Summary      Cancel adjustment document
// @Description  Cancel a draft adjustment document (posted documents cannot be cancelled)
// @Tags         adjustment-documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Adjustment Document ID" format(uuid)
// @Param        request body CancelAdjustmentDocumentRequest true "Cancellation request"
// @Success      200 {object} dto.Response{data=inventoryapp.AdjustmentDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustment-documents/{id}/cancel [post]
func (h *AdjustmentDocumentHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment document ID format")
		return
	}

	var req CancelAdjustmentDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := inventoryapp.CancelAdjustmentDocumentRequest{
		Reason: req.Reason,
	}

	result, err := h.service.Cancel(c.Request.Context(), tenantID, id, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
