package handler

import (
	"time"

	valuationapp "github.com/stockledger/platform/internal/application/valuation"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/valuation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ValuationHandler exposes the Valuation Engine (§4.E) over HTTP.
type ValuationHandler struct {
	BaseHandler
	valuationService *valuationapp.ValuationService
}

// NewValuationHandler creates a new ValuationHandler.
func NewValuationHandler(valuationService *valuationapp.ValuationService) *ValuationHandler {
	return &ValuationHandler{valuationService: valuationService}
}

// ReceiptRequest books an incoming receipt against a warehouse/product scope.
type ReceiptRequest struct {
	WarehouseID   string     `json:"warehouse_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProductID     string     `json:"product_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
	QuantityMinor int64      `json:"quantity" binding:"required,gt=0" example:"50"`
	UnitCostMinor int64      `json:"unit_cost" binding:"required,gte=0" example:"1550"`
	ReceivedAt    *time.Time `json:"received_at"`
}

// DeliveryRequest books an outgoing delivery against a warehouse/product scope.
type DeliveryRequest struct {
	WarehouseID   string `json:"warehouse_id" binding:"required"`
	ProductID     string `json:"product_id" binding:"required"`
	QuantityMinor int64  `json:"quantity" binding:"required,gt=0" example:"10"`
}

// RevalueRequest replaces the running unit cost for a warehouse/product scope.
type RevalueRequest struct {
	WarehouseID      string `json:"warehouse_id" binding:"required"`
	ProductID        string `json:"product_id" binding:"required"`
	NewUnitCostMinor int64  `json:"new_unit_cost" binding:"required,gte=0" example:"1600"`
}

// SwitchMethodRequest changes the active costing method for a warehouse/product scope.
type SwitchMethodRequest struct {
	WarehouseID string `json:"warehouse_id" binding:"required"`
	ProductID   string `json:"product_id" binding:"required"`
	Method      string `json:"method" binding:"required" example:"fifo"`
}

// AdjustRequest books a direct quantity/value correction against a
// warehouse/product valuation account.
type AdjustRequest struct {
	WarehouseID   string `json:"warehouse_id" binding:"required"`
	ProductID     string `json:"product_id" binding:"required"`
	QuantityDelta int64  `json:"quantity_delta" example:"-5"`
	ValueDelta    int64  `json:"value_delta" example:"-775"`
	Reason        string `json:"reason" example:"stock take difference"`
}

// SetStandardCostRequest replaces the standard cost on a warehouse/product
// valuation account already under MethodStandard.
type SetStandardCostRequest struct {
	WarehouseID      string `json:"warehouse_id" binding:"required"`
	ProductID        string `json:"product_id" binding:"required"`
	NewStandardCost  int64  `json:"new_standard_cost" binding:"required,gte=0" example:"1500"`
}

// ValuationHistoryQuery is the query string for GetHistory.
type ValuationHistoryQuery struct {
	Page     int `form:"page" binding:"min=0"`
	PageSize int `form:"page_size" binding:"min=0,max=100"`
}

// ValuationAccountResponse is a summary view of a valuation account.
type ValuationAccountResponse struct {
	ID                 string `json:"id"`
	WarehouseID        string `json:"warehouse_id"`
	ProductID          string `json:"product_id"`
	Method             string `json:"method"`
	TotalQuantityMinor int64  `json:"total_quantity"`
	TotalValueMinor    int64  `json:"total_value"`
	RunningUnitCostMinor int64 `json:"running_unit_cost"`
	StandardCostMinor  int64  `json:"standard_cost"`
}

func toValuationAccountResponse(a *valuation.ValuationAccount) ValuationAccountResponse {
	return ValuationAccountResponse{
		ID:                   a.ID.String(),
		WarehouseID:          a.WarehouseID.String(),
		ProductID:            a.ProductID.String(),
		Method:               string(a.Method),
		TotalQuantityMinor:   shared.DecimalToQuantityMinor(a.TotalQuantity),
		TotalValueMinor:      shared.DecimalToMoneyMinor(a.TotalValue),
		RunningUnitCostMinor: shared.DecimalToMoneyMinor(a.RunningUnitCost()),
		StandardCostMinor:    shared.DecimalToMoneyMinor(a.StandardCost),
	}
}

// CostLayerResponse is one open FIFO cost layer.
type CostLayerResponse struct {
	ID           string    `json:"id"`
	QuantityMinor int64    `json:"quantity"`
	UnitCostMinor int64    `json:"unit_cost"`
	ReceivedAt   time.Time `json:"received_at"`
}

// ValuationHistoryResponse is one audit row of a valuation account.
type ValuationHistoryResponse struct {
	ID                 string    `json:"id"`
	ValuationAccountID string    `json:"valuation_account_id"`
	Kind               string    `json:"kind"`
	PriorQuantityMinor int64     `json:"prior_quantity"`
	NewQuantityMinor   int64     `json:"new_quantity"`
	PriorValueMinor    int64     `json:"prior_value"`
	NewValueMinor      int64     `json:"new_value"`
	PriorUnitCostMinor int64     `json:"prior_unit_cost"`
	NewUnitCostMinor   int64     `json:"new_unit_cost"`
	VarianceMinor      int64     `json:"variance"`
	CreatedAt          time.Time `json:"created_at"`
}

func toValuationHistoryResponse(h *valuation.ValuationHistory) ValuationHistoryResponse {
	return ValuationHistoryResponse{
		ID:                 h.ID.String(),
		ValuationAccountID: h.ValuationAccountID.String(),
		Kind:               string(h.Kind),
		PriorQuantityMinor: shared.DecimalToQuantityMinor(h.PriorQuantity),
		NewQuantityMinor:   shared.DecimalToQuantityMinor(h.NewQuantity),
		PriorValueMinor:    shared.DecimalToMoneyMinor(h.PriorValue),
		NewValueMinor:      shared.DecimalToMoneyMinor(h.NewValue),
		PriorUnitCostMinor: shared.DecimalToMoneyMinor(h.PriorUnitCost),
		NewUnitCostMinor:   shared.DecimalToMoneyMinor(h.NewUnitCost),
		VarianceMinor:      shared.DecimalToMoneyMinor(h.Variance),
		CreatedAt:          h.CreatedAt,
	}
}

// RecordReceipt godoc
// @ID           recordValuationReceipt
// @Summary      Record a valuation receipt
// @Description  Book an incoming receipt against a warehouse/product valuation account, creating the account under AVCO if none exists
// @Tags         valuation
// @Accept       json
// @Produce      json
// @Param        request body ReceiptRequest true "Receipt request"
// @Success      200 {object} APIResponse[ValuationHistoryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/receipts [post]
func (h *ValuationHandler) RecordReceipt(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	history, err := h.valuationService.RecordReceipt(c.Request.Context(), tenantID, warehouseID, productID, shared.QuantityMinorToDecimal(req.QuantityMinor), shared.MoneyMinorToDecimal(req.UnitCostMinor), receivedAt)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toValuationHistoryResponse(history))
}

// RecordDelivery godoc
// @ID           recordValuationDelivery
// @Summary      Record a valuation delivery
// @Description  Book an outgoing delivery against an existing warehouse/product valuation account
// @Tags         valuation
// @Accept       json
// @Produce      json
// @Param        request body DeliveryRequest true "Delivery request"
// @Success      200 {object} APIResponse[ValuationHistoryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/deliveries [post]
func (h *ValuationHandler) RecordDelivery(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	history, err := h.valuationService.RecordDelivery(c.Request.Context(), tenantID, warehouseID, productID, shared.QuantityMinorToDecimal(req.QuantityMinor))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toValuationHistoryResponse(history))
}

// Revalue godoc
// @ID           revalueValuationAccount
// @Summary      Revalue a valuation account
// @Description  Replace the running unit cost for a warehouse/product valuation account without changing its quantity
// @Tags         valuation
// @Accept       json
// @Produce      json
// @Param        request body RevalueRequest true "Revalue request"
// @Success      200 {object} APIResponse[ValuationHistoryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/revalue [post]
func (h *ValuationHandler) Revalue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RevalueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	history, err := h.valuationService.Revalue(c.Request.Context(), tenantID, warehouseID, productID, shared.MoneyMinorToDecimal(req.NewUnitCostMinor))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toValuationHistoryResponse(history))
}

// SwitchMethod godoc
// @ID           switchValuationMethod
// @Summary      Switch a valuation account's costing method
// @Description  Change the active costing method (fifo, avco, standard) for a warehouse/product valuation account
// @Tags         valuation
// @Accept       json
// @Produce      json
// @Param        request body SwitchMethodRequest true "Switch method request"
// @Success      200 {object} APIResponse[ValuationHistoryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/switch-method [post]
func (h *ValuationHandler) SwitchMethod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req SwitchMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	history, err := h.valuationService.SwitchMethod(c.Request.Context(), tenantID, warehouseID, productID, valuation.Method(req.Method))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toValuationHistoryResponse(history))
}

// GetHistory godoc
// @ID           getValuationHistory
// @Summary      Get a valuation account's audit trail
// @Description  Retrieve the append-only history of receipts, deliveries, revaluations, and method changes for a valuation account
// @Tags         valuation
// @Produce      json
// @Param        id path string true "Valuation Account ID" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]ValuationHistoryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/{id}/history [get]
func (h *ValuationHandler) GetHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid valuation account ID format")
		return
	}

	var query ValuationHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	filter := shared.Filter{Page: query.Page, PageSize: query.PageSize}
	history, err := h.valuationService.GetHistory(c.Request.Context(), tenantID, accountID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := make([]ValuationHistoryResponse, len(history))
	for i := range history {
		resp[i] = toValuationHistoryResponse(&history[i])
	}

	h.Success(c, resp)
}

// Adjust godoc
// @ID           adjustValuationAccount
// @Summary      Adjust a valuation account
// @Description  Book a direct quantity/value correction against a warehouse/product valuation account, e.g. to mirror a stock taking difference or manual adjustment
// @Tags         valuation
// @Accept       json
// @Produce      json
// @Param        request body AdjustRequest true "Adjust request"
// @Success      200 {object} APIResponse[ValuationHistoryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/adjust [post]
func (h *ValuationHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	history, err := h.valuationService.Adjust(c.Request.Context(), tenantID, warehouseID, productID,
		shared.QuantityMinorToDecimal(req.QuantityDelta), shared.MoneyMinorToDecimal(req.ValueDelta), req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toValuationHistoryResponse(history))
}

// SetStandardCost godoc
// @ID           setValuationStandardCost
// @Summary      Set a valuation account's standard cost
// @Description  Replace the standard cost on a warehouse/product valuation account already under the standard costing method
// @Tags         valuation
// @Accept       json
// @Produce      json
// @Param        request body SetStandardCostRequest true "Set standard cost request"
// @Success      200 {object} APIResponse[ValuationAccountResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/standard-cost [post]
func (h *ValuationHandler) SetStandardCost(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req SetStandardCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	account, err := h.valuationService.SetStandardCost(c.Request.Context(), tenantID, warehouseID, productID, shared.MoneyMinorToDecimal(req.NewStandardCost))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toValuationAccountResponse(account))
}

// GetByProduct godoc
// @ID           getValuationAccountsByProduct
// @Summary      List a product's valuation accounts
// @Description  List every warehouse-scoped valuation account for a product
// @Tags         valuation
// @Produce      json
// @Param        productId path string true "Product ID" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]ValuationAccountResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/by-product/{productId} [get]
func (h *ValuationHandler) GetByProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var query ValuationHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	filter := shared.Filter{Page: query.Page, PageSize: query.PageSize}
	accounts, err := h.valuationService.GetByProduct(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := make([]ValuationAccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = toValuationAccountResponse(&accounts[i])
	}

	h.Success(c, resp)
}

// GetLayers godoc
// @ID           getValuationAccountLayers
// @Summary      Get a valuation account's open FIFO cost layers
// @Description  List the open FIFO cost layers for a valuation account; empty for accounts not under the FIFO costing method
// @Tags         valuation
// @Produce      json
// @Param        id path string true "Valuation Account ID" format(uuid)
// @Success      200 {object} APIResponse[[]CostLayerResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /valuation-accounts/{id}/layers [get]
func (h *ValuationHandler) GetLayers(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid valuation account ID format")
		return
	}

	layers, err := h.valuationService.GetLayers(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := make([]CostLayerResponse, len(layers))
	for i, l := range layers {
		resp[i] = CostLayerResponse{
			ID:            l.ID.String(),
			QuantityMinor: shared.DecimalToQuantityMinor(l.Quantity),
			UnitCostMinor: shared.DecimalToMoneyMinor(l.UnitCost),
			ReceivedAt:    l.ReceivedAt,
		}
	}

	h.Success(c, resp)
}
