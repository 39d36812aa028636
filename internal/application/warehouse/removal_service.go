package warehouse

import (
	"context"
	"fmt"

	inventoryapp "github.com/stockledger/platform/internal/application/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RemovalService resolves the applicable removal strategy for a
// warehouse/product scope and builds a fulfillment plan against the
// candidate stock a caller supplies (§4.H). Picking candidates come from
// wherever a caller's stock-location data lives; this service only owns
// strategy resolution and the planning call itself.
type RemovalService struct {
	strategyRepo     warehouse.RemovalStrategyRepository
	inventoryService *inventoryapp.InventoryService
}

// NewRemovalService creates a new RemovalService.
func NewRemovalService(strategyRepo warehouse.RemovalStrategyRepository, inventoryService *inventoryapp.InventoryService) *RemovalService {
	return &RemovalService{strategyRepo: strategyRepo, inventoryService: inventoryService}
}

// ConfirmPlanRequest carries the plan lines a caller obtained from BuildPlan
// (or built by hand) back for commitment, plus the source document the
// resulting stock moves are attributed to.
type ConfirmPlanRequest struct {
	ProductID      uuid.UUID
	Lines          []warehouse.RemovalPlanLine
	SourceType     string
	SourceID       string
	Reference      string
	Reason         string
	OperatorID     *uuid.UUID
	IdempotencyKey string
}

// BuildPlan resolves the most specific active removal strategy for
// (warehouseID, productID) and greedily allocates demand across candidates
// in that strategy's picking order.
func (s *RemovalService) BuildPlan(
	ctx context.Context,
	tenantID, warehouseID, productID uuid.UUID,
	origin warehouse.Coordinates,
	demand int64,
	candidates []warehouse.RemovalCandidate,
) (*warehouse.RemovalPlan, error) {
	strategies, err := s.strategyRepo.FindActiveForScope(ctx, tenantID, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	strategy := warehouse.ResolveStrategy(warehouseID, productID, strategies)
	if strategy == nil {
		return nil, shared.NewDomainError("NO_REMOVAL_STRATEGY", "No active removal strategy resolves for this warehouse/product scope")
	}

	plan := warehouse.BuildPlan(strategy.StrategyType, origin, demand, candidates)
	return &plan, nil
}

// ConfirmPlan commits a previously built removal plan: every line posts a
// DecreaseStock move through the Stock Ledger (B), exactly like adjustment
// document posting (F) does, tagged with the caller-supplied source
// document. When IdempotencyKey is set, each line derives its own key
// (keyed per location) so replaying the same confirm request does not
// double-deduct stock.
func (s *RemovalService) ConfirmPlan(ctx context.Context, tenantID, warehouseID uuid.UUID, req ConfirmPlanRequest) error {
	for _, line := range req.Lines {
		if line.SuggestedQuantity <= 0 {
			continue
		}

		idempotencyKey := ""
		if req.IdempotencyKey != "" {
			idempotencyKey = fmt.Sprintf("%s:%s", req.IdempotencyKey, line.Location.LocationID)
		}

		if err := s.inventoryService.DecreaseStock(ctx, tenantID, inventoryapp.DecreaseStockRequest{
			WarehouseID:    warehouseID,
			ProductID:      req.ProductID,
			Quantity:       decimal.NewFromInt(line.SuggestedQuantity),
			SourceType:     req.SourceType,
			SourceID:       req.SourceID,
			Reference:      req.Reference,
			Reason:         req.Reason,
			OperatorID:     req.OperatorID,
			IdempotencyKey: idempotencyKey,
		}); err != nil {
			return err
		}
	}

	return nil
}
