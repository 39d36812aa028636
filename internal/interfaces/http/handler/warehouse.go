package handler

import (
	"time"

	warehouseapp "github.com/stockledger/platform/internal/application/warehouse"
	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WarehouseHandler handles putaway and removal planning endpoints.
type WarehouseHandler struct {
	BaseHandler
	putawayService *warehouseapp.PutawayService
	removalService *warehouseapp.RemovalService
}

// NewWarehouseHandler creates a new WarehouseHandler.
func NewWarehouseHandler(putawayService *warehouseapp.PutawayService, removalService *warehouseapp.RemovalService) *WarehouseHandler {
	return &WarehouseHandler{
		putawayService: putawayService,
		removalService: removalService,
	}
}

// PutawaySuggestionRequest is the request body for a putaway suggestion.
type PutawaySuggestionRequest struct {
	ProductID     string `json:"product_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity      int64  `json:"quantity" binding:"required,gt=0" example:"50"`
	PreferredType string `json:"preferred_type" example:"bin"`
}

// PutawaySuggestionResponse is one ranked candidate location.
type PutawaySuggestionResponse struct {
	LocationID   string `json:"location_id"`
	LocationCode string `json:"location_code"`
	ZoneCode     string `json:"zone_code"`
	Aisle        string `json:"aisle"`
	Type         string `json:"type"`
	Capacity     int64  `json:"capacity"`
	CurrentStock int64  `json:"current_stock"`
	Score        int    `json:"score"`
}

// Suggest godoc
// @ID           suggestPutawayLocation
// @Summary      Suggest putaway locations
// @Description  Rank candidate locations in a warehouse for putting away a quantity of a product
// @Tags         warehouse
// @Accept       json
// @Produce      json
// @Param        warehouseId path string true "Warehouse ID" format(uuid)
// @Param        request body PutawaySuggestionRequest true "Putaway suggestion request"
// @Success      200 {object} APIResponse[[]PutawaySuggestionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/{warehouseId}/putaway-suggestions [post]
func (h *WarehouseHandler) Suggest(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	warehouseID, err := uuid.Parse(c.Param("warehouseId"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	var req PutawaySuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	preferredType := warehouse.LocationType(req.PreferredType)

	ranked, err := h.putawayService.Suggest(c.Request.Context(), tenantID, warehouseID, productID, req.Quantity, preferredType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := make([]PutawaySuggestionResponse, len(ranked))
	for i, sc := range ranked {
		resp[i] = PutawaySuggestionResponse{
			LocationID:   sc.Candidate.LocationID.String(),
			LocationCode: sc.Candidate.LocationCode,
			ZoneCode:     sc.Candidate.ZoneCode,
			Aisle:        sc.Candidate.Aisle,
			Type:         string(sc.Candidate.Type),
			Capacity:     sc.Candidate.Capacity,
			CurrentStock: sc.Candidate.CurrentStock,
			Score:        sc.Score,
		}
	}

	h.Success(c, resp)
}

// RemovalCandidateRequest is one unit of residing stock a caller offers the
// planner as pickable at a location.
type RemovalCandidateRequest struct {
	LocationID        string     `json:"location_id" binding:"required"`
	LocationCode      string     `json:"location_code"`
	AvailableQuantity int64      `json:"available_quantity" binding:"required,gt=0"`
	ReceiptTime       time.Time  `json:"receipt_time" binding:"required"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	CoordinateX       *int       `json:"coordinate_x"`
	CoordinateY       *int       `json:"coordinate_y"`
}

// RemovalPlanRequest is the request body for a removal plan.
type RemovalPlanRequest struct {
	ProductID  string                    `json:"product_id" binding:"required"`
	Demand     int64                     `json:"demand" binding:"required,gt=0"`
	OriginX    int                       `json:"origin_x"`
	OriginY    int                       `json:"origin_y"`
	Candidates []RemovalCandidateRequest `json:"candidates" binding:"required,dive"`
}

// RemovalPlanLineResponse is one step of a fulfillment plan.
type RemovalPlanLineResponse struct {
	LocationID        string `json:"location_id"`
	LocationCode      string `json:"location_code"`
	SuggestedQuantity int64  `json:"suggested_quantity"`
}

// RemovalPlanResponse is the resolved fulfillment plan.
type RemovalPlanResponse struct {
	Lines      []RemovalPlanLineResponse `json:"lines"`
	CanFulfill bool                      `json:"can_fulfill"`
}

// Plan godoc
// @ID           buildRemovalPlan
// @Summary      Build a removal plan
// @Description  Resolve the active removal strategy for a warehouse/product scope and allocate demand across candidate locations
// @Tags         warehouse
// @Accept       json
// @Produce      json
// @Param        warehouseId path string true "Warehouse ID" format(uuid)
// @Param        request body RemovalPlanRequest true "Removal plan request"
// @Success      200 {object} APIResponse[RemovalPlanResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/{warehouseId}/removal-plan [post]
func (h *WarehouseHandler) Plan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	warehouseID, err := uuid.Parse(c.Param("warehouseId"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	var req RemovalPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	candidates := make([]warehouse.RemovalCandidate, len(req.Candidates))
	for i, rc := range req.Candidates {
		locationID, err := uuid.Parse(rc.LocationID)
		if err != nil {
			h.BadRequest(c, "Invalid candidate location ID format")
			return
		}
		var coords *warehouse.Coordinates
		if rc.CoordinateX != nil && rc.CoordinateY != nil {
			coords = &warehouse.Coordinates{X: *rc.CoordinateX, Y: *rc.CoordinateY}
		}
		candidates[i] = warehouse.RemovalCandidate{
			LocationID:        locationID,
			LocationCode:      rc.LocationCode,
			AvailableQuantity: rc.AvailableQuantity,
			ReceiptTime:       rc.ReceiptTime,
			ExpiryDate:        rc.ExpiryDate,
			Coordinates:       coords,
		}
	}

	origin := warehouse.Coordinates{X: req.OriginX, Y: req.OriginY}

	plan, err := h.removalService.BuildPlan(c.Request.Context(), tenantID, warehouseID, productID, origin, req.Demand, candidates)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	lines := make([]RemovalPlanLineResponse, len(plan.Lines))
	for i, line := range plan.Lines {
		lines[i] = RemovalPlanLineResponse{
			LocationID:        line.Location.LocationID.String(),
			LocationCode:      line.Location.LocationCode,
			SuggestedQuantity: line.SuggestedQuantity,
		}
	}

	h.Success(c, RemovalPlanResponse{Lines: lines, CanFulfill: plan.CanFulfill})
}

// RemovalConfirmLineRequest is one committed plan line: pick Quantity units
// from LocationID.
type RemovalConfirmLineRequest struct {
	LocationID   string `json:"location_id" binding:"required"`
	LocationCode string `json:"location_code"`
	Quantity     int64  `json:"quantity" binding:"required,gt=0"`
}

// RemovalConfirmRequest is the request body for committing a removal plan.
type RemovalConfirmRequest struct {
	ProductID      string                      `json:"product_id" binding:"required"`
	Lines          []RemovalConfirmLineRequest `json:"lines" binding:"required,min=1,dive"`
	SourceType     string                      `json:"source_type" binding:"required" example:"SALES_ORDER"`
	SourceID       string                      `json:"source_id" binding:"required"`
	Reference      string                      `json:"reference"`
	Reason         string                      `json:"reason"`
	OperatorID     string                      `json:"operator_id"`
	IdempotencyKey string                      `json:"idempotency_key" example:"so-2024-001-pick-1"`
}

// Confirm godoc
// @ID           confirmRemovalPlan
// @Summary      Confirm a removal plan
// @Description  Commit a previously built removal plan, posting a deduction stock move per line through the Stock Ledger
// @Tags         warehouse
// @Accept       json
// @Produce      json
// @Param        warehouseId path string true "Warehouse ID" format(uuid)
// @Param        request body RemovalConfirmRequest true "Removal plan confirmation request"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /warehouses/{warehouseId}/removal-plan/confirm [post]
func (h *WarehouseHandler) Confirm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	warehouseID, err := uuid.Parse(c.Param("warehouseId"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	var req RemovalConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	lines := make([]warehouse.RemovalPlanLine, len(req.Lines))
	for i, l := range req.Lines {
		locationID, err := uuid.Parse(l.LocationID)
		if err != nil {
			h.BadRequest(c, "Invalid line location ID format")
			return
		}
		lines[i] = warehouse.RemovalPlanLine{
			Location: warehouse.RemovalCandidate{
				LocationID:   locationID,
				LocationCode: l.LocationCode,
			},
			SuggestedQuantity: l.Quantity,
		}
	}

	confirmReq := warehouseapp.ConfirmPlanRequest{
		ProductID:      productID,
		Lines:          lines,
		SourceType:     req.SourceType,
		SourceID:       req.SourceID,
		Reference:      req.Reference,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.OperatorID != "" {
		operatorID, err := uuid.Parse(req.OperatorID)
		if err != nil {
			h.BadRequest(c, "Invalid operator ID format")
			return
		}
		confirmReq.OperatorID = &operatorID
	}

	if err := h.removalService.ConfirmPlan(c.Request.Context(), tenantID, warehouseID, confirmReq); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"confirmed": true})
}
