package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stockTakingIdempotencyTTL bounds how long a (stock_taking_id, product_id)
// finalize key is remembered, matching the window used for adjustment
// document line posting.
const stockTakingIdempotencyTTL = 24 * time.Hour

// StockTakingService provides application services for stock taking operations
type StockTakingService struct {
	stockTakingRepo  inventory.StockTakingRepository
	inventoryService *InventoryService
	eventBus         shared.EventBus
	idempotencyStore shared.IdempotencyStore
	logger           *zap.Logger
}

// NewStockTakingService creates a new StockTakingService
func NewStockTakingService(
	stockTakingRepo inventory.StockTakingRepository,
	inventoryService *InventoryService,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *StockTakingService {
	return &StockTakingService{
		stockTakingRepo:  stockTakingRepo,
		inventoryService: inventoryService,
		eventBus:         eventBus,
		logger:           logger,
	}
}

// SetIdempotencyStore sets the Idempotency Registry backing finalize
// idempotency, the same registry used by AdjustmentDocumentService. Optional:
// when nil, Finalize falls back to the item Posted flags already persisted
// on the aggregate.
func (s *StockTakingService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// ===================== Query Methods =====================

// GetByID retrieves a stock taking by ID
func (s *StockTakingService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// GetByTakingNumber retrieves a stock taking by its number
func (s *StockTakingService) GetByTakingNumber(ctx context.Context, tenantID uuid.UUID, takingNumber string) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByTakingNumber(ctx, tenantID, takingNumber)
	if err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// List retrieves a paginated list of stock takings
func (s *StockTakingService) List(ctx context.Context, tenantID uuid.UUID, filter StockTakingListFilter) ([]StockTakingListResponse, int64, error) {
	// Build domain filter
	domainFilter := inventory.StockTakingFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		WarehouseID: filter.WarehouseID,
		Status:      filter.Status,
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
		CreatedByID: filter.CreatedByID,
	}

	// Get total count
	total, err := s.stockTakingRepo.CountForTenant(ctx, tenantID, domainFilter.Filter)
	if err != nil {
		return nil, 0, err
	}

	// Get stock takings
	sts, err := s.stockTakingRepo.FindAllForTenant(ctx, tenantID, domainFilter.Filter)
	if err != nil {
		return nil, 0, err
	}

	return ToStockTakingListResponses(sts), total, nil
}

// ListByWarehouse retrieves stock takings for a specific warehouse
func (s *StockTakingService) ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter StockTakingListFilter) ([]StockTakingListResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	sts, err := s.stockTakingRepo.FindByWarehouse(ctx, tenantID, warehouseID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.stockTakingRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToStockTakingListResponses(sts), total, nil
}

// ListByStatus retrieves stock takings with a specific status
func (s *StockTakingService) ListByStatus(ctx context.Context, tenantID uuid.UUID, status inventory.StockTakingStatus, filter StockTakingListFilter) ([]StockTakingListResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	sts, err := s.stockTakingRepo.FindByStatus(ctx, tenantID, status, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.stockTakingRepo.CountByStatus(ctx, tenantID, status)
	if err != nil {
		return nil, 0, err
	}

	return ToStockTakingListResponses(sts), total, nil
}

// GetProgress retrieves the progress of a stock taking
func (s *StockTakingService) GetProgress(ctx context.Context, tenantID, id uuid.UUID) (*StockTakingProgressResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	response := ToStockTakingProgressResponse(st)
	return &response, nil
}

// ===================== Command Methods =====================

// Create creates a new stock taking
func (s *StockTakingService) Create(ctx context.Context, tenantID uuid.UUID, req CreateStockTakingRequest) (*StockTakingResponse, error) {
	// Generate taking number
	takingNumber, err := s.stockTakingRepo.GenerateTakingNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Determine taking date
	takingDate := time.Now()
	if req.TakingDate != nil {
		takingDate = *req.TakingDate
	}

	// Create stock taking aggregate
	st, err := inventory.NewStockTaking(
		tenantID,
		req.WarehouseID,
		req.WarehouseName,
		takingNumber,
		takingDate,
		req.CreatedByID,
		req.CreatedByName,
	)
	if err != nil {
		return nil, err
	}

	if req.Remark != "" {
		st.SetRemark(req.Remark)
	}

	// Save to repository
	if err := s.stockTakingRepo.SaveWithItems(ctx, st); err != nil {
		return nil, err
	}

	// Publish domain events
	s.publishEvents(ctx, st)

	response := ToStockTakingResponse(st)
	return &response, nil
}

// Update updates a stock taking (only in DRAFT status)
func (s *StockTakingService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateStockTakingRequest) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if st.Status != inventory.StockTakingStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only update stock taking in DRAFT status")
	}

	st.SetRemark(req.Remark)

	if err := s.stockTakingRepo.Save(ctx, st); err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// Delete deletes a stock taking (only in DRAFT status)
func (s *StockTakingService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if st.Status != inventory.StockTakingStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Can only delete stock taking in DRAFT status")
	}

	return s.stockTakingRepo.DeleteForTenant(ctx, tenantID, id)
}

// AddItem adds an item to a stock taking
func (s *StockTakingService) AddItem(ctx context.Context, tenantID, stockTakingID uuid.UUID, req AddStockTakingItemRequest) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, stockTakingID)
	if err != nil {
		return nil, err
	}

	if err := st.AddItem(req.ProductID, req.ProductName, req.ProductCode, req.Unit,
		shared.QuantityMinorToDecimal(req.SystemQuantityMinor), shared.MoneyMinorToDecimal(req.UnitCostMinor)); err != nil {
		return nil, err
	}

	if err := s.stockTakingRepo.SaveWithItems(ctx, st); err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// AddItems adds multiple items to a stock taking
func (s *StockTakingService) AddItems(ctx context.Context, tenantID, stockTakingID uuid.UUID, req AddStockTakingItemsRequest) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, stockTakingID)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if err := st.AddItem(item.ProductID, item.ProductName, item.ProductCode, item.Unit,
			shared.QuantityMinorToDecimal(item.SystemQuantityMinor), shared.MoneyMinorToDecimal(item.UnitCostMinor)); err != nil {
			return nil, err
		}
	}

	if err := s.stockTakingRepo.SaveWithItems(ctx, st); err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// RemoveItem removes an item from a stock taking
func (s *StockTakingService) RemoveItem(ctx context.Context, tenantID, stockTakingID, productID uuid.UUID) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, stockTakingID)
	if err != nil {
		return nil, err
	}

	if err := st.RemoveItem(productID); err != nil {
		return nil, err
	}

	if err := s.stockTakingRepo.SaveWithItems(ctx, st); err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// StartCounting starts the counting process
func (s *StockTakingService) StartCounting(ctx context.Context, tenantID, id uuid.UUID) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := st.StartCounting(); err != nil {
		return nil, err
	}

	if err := s.stockTakingRepo.Save(ctx, st); err != nil {
		return nil, err
	}

	// Publish domain events
	s.publishEvents(ctx, st)

	response := ToStockTakingResponse(st)
	return &response, nil
}

// RecordCount records the actual count for an item
func (s *StockTakingService) RecordCount(ctx context.Context, tenantID, stockTakingID uuid.UUID, req RecordCountRequest) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, stockTakingID)
	if err != nil {
		return nil, err
	}

	if err := st.RecordItemCount(req.ProductID, shared.QuantityMinorToDecimal(req.ActualQuantityMinor), req.Remark); err != nil {
		return nil, err
	}

	if err := s.stockTakingRepo.SaveWithItems(ctx, st); err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// RecordCounts records multiple counts at once
func (s *StockTakingService) RecordCounts(ctx context.Context, tenantID, stockTakingID uuid.UUID, req RecordCountsRequest) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, stockTakingID)
	if err != nil {
		return nil, err
	}

	for _, count := range req.Counts {
		if err := st.RecordItemCount(count.ProductID, shared.QuantityMinorToDecimal(count.ActualQuantityMinor), count.Remark); err != nil {
			return nil, err
		}
	}

	if err := s.stockTakingRepo.SaveWithItems(ctx, st); err != nil {
		return nil, err
	}

	response := ToStockTakingResponse(st)
	return &response, nil
}

// Finalize posts every unposted item's non-zero (actual - expected)
// difference as an adjustment-type stock move and transitions the stock
// taking to completed. Re-finalizing an already completed stock taking
// returns its current state without emitting duplicate moves (spec.md §4.F).
func (s *StockTakingService) Finalize(ctx context.Context, tenantID, id uuid.UUID, req FinalizeStockTakingRequest) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if st.Status == inventory.StockTakingStatusCompleted {
		response := ToStockTakingResponse(st)
		return &response, nil
	}

	for i := range st.Items {
		item := &st.Items[i]
		if item.Posted || !item.HasDifference() {
			continue
		}

		key := s.itemIdempotencyKey(st.ID, item.ProductID)
		if s.idempotencyStore != nil {
			processed, err := s.idempotencyStore.IsProcessed(ctx, key)
			if err != nil {
				return nil, err
			}
			if processed {
				if err := st.MarkItemPosted(item.ProductID); err != nil {
					return nil, err
				}
				continue
			}
		}

		if err := s.postItemDifference(ctx, tenantID, st, item, req.OperatorID); err != nil {
			return nil, err
		}

		if s.idempotencyStore != nil {
			if _, err := s.idempotencyStore.MarkProcessed(ctx, key, stockTakingIdempotencyTTL); err != nil {
				s.logger.Warn("Failed to record stock taking item idempotency key",
					zap.String("stock_taking_id", st.ID.String()),
					zap.String("product_id", item.ProductID.String()),
					zap.Error(err),
				)
			}
		}

		if err := st.MarkItemPosted(item.ProductID); err != nil {
			return nil, err
		}
	}

	if err := st.Finalize(req.OperatorID, req.OperatorName, req.Note); err != nil {
		return nil, err
	}

	if err := s.stockTakingRepo.SaveWithItems(ctx, st); err != nil {
		return nil, err
	}

	// Publish domain events (StockTakingFinalizedEvent, inventory.stock_take.finalized)
	s.publishEvents(ctx, st)

	response := ToStockTakingResponse(st)
	return &response, nil
}

// postItemDifference applies a single item's signed difference through the
// Stock Ledger: a positive difference (more on hand than expected) posts as
// a receipt (IncreaseStock), a negative difference posts as an outbound
// deduction (DecreaseStock) - the same routing AdjustmentDocumentService
// uses for manual correction lines.
func (s *StockTakingService) postItemDifference(ctx context.Context, tenantID uuid.UUID, st *inventory.StockTaking, item *inventory.StockTakingItem, operatorID *uuid.UUID) error {
	reference := fmt.Sprintf("%s/%s", st.TakingNumber, item.ProductID)

	if item.DifferenceQty.IsPositive() {
		_, err := s.inventoryService.IncreaseStock(ctx, tenantID, IncreaseStockRequest{
			WarehouseID:   st.WarehouseID,
			ProductID:     item.ProductID,
			QuantityMinor: shared.DecimalToQuantityMinor(item.DifferenceQty),
			UnitCostMinor: shared.DecimalToMoneyMinor(item.UnitCost),
			SourceType:    string(inventory.SourceTypeStockTaking),
			SourceID:      st.ID.String(),
			Reference:     reference,
			Reason:        fmt.Sprintf("Stock take %s count difference", st.TakingNumber),
			OperatorID:    operatorID,
		})
		return err
	}

	return s.inventoryService.DecreaseStock(ctx, tenantID, DecreaseStockRequest{
		WarehouseID: st.WarehouseID,
		ProductID:   item.ProductID,
		Quantity:    item.DifferenceQty.Abs(),
		SourceType:  string(inventory.SourceTypeStockTaking),
		SourceID:    st.ID.String(),
		Reference:   reference,
		Reason:      fmt.Sprintf("Stock take %s count difference", st.TakingNumber),
		OperatorID:  operatorID,
	})
}

func (s *StockTakingService) itemIdempotencyKey(stockTakingID, productID uuid.UUID) string {
	return fmt.Sprintf("stock-taking:%s:%s", stockTakingID, productID)
}

// Cancel cancels the stock taking
func (s *StockTakingService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelStockTakingRequest) (*StockTakingResponse, error) {
	st, err := s.stockTakingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := st.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.stockTakingRepo.Save(ctx, st); err != nil {
		return nil, err
	}

	// Publish domain events
	s.publishEvents(ctx, st)

	response := ToStockTakingResponse(st)
	return &response, nil
}

// publishEvents publishes domain events from the aggregate
func (s *StockTakingService) publishEvents(ctx context.Context, st *inventory.StockTaking) {
	if s.eventBus == nil {
		return
	}

	for _, event := range st.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	st.ClearDomainEvents()
}
