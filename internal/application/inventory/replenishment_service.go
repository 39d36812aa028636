package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IncomingQuantityLookup resolves the sum of not-yet-received quantities on
// open purchase-order-like references for a product/warehouse, the
// "incoming_committed" term of §4.I's projection formula. This substrate
// does not own purchasing, so callers wire a lookup backed by whatever
// upstream system tracks open orders; ReplenishmentService treats a lookup
// error as "unavailable" and falls back to 0 with a structured warning
// rather than fabricating a number.
type IncomingQuantityLookup func(ctx context.Context, tenantID, productID uuid.UUID, warehouseID *uuid.UUID) (int64, error)

// ReplenishmentService evaluates active ReorderRules against current
// inventory and emits reorder.triggered events (§4.I). It is stateless
// beyond the rules and current inventory it reads per call.
type ReplenishmentService struct {
	ruleRepo       inventory.ReorderRuleRepository
	inventoryRepo  inventory.InventoryItemRepository
	eventBus       shared.EventBus
	incomingLookup IncomingQuantityLookup
	logger         *zap.Logger
}

// NewReplenishmentService creates a new ReplenishmentService. incomingLookup
// may be nil, in which case incoming is always treated as 0.
func NewReplenishmentService(
	ruleRepo inventory.ReorderRuleRepository,
	inventoryRepo inventory.InventoryItemRepository,
	eventBus shared.EventBus,
	incomingLookup IncomingQuantityLookup,
	logger *zap.Logger,
) *ReplenishmentService {
	return &ReplenishmentService{
		ruleRepo:       ruleRepo,
		inventoryRepo:  inventoryRepo,
		eventBus:       eventBus,
		incomingLookup: incomingLookup,
		logger:         logger,
	}
}

// ReplenishmentStats summarizes one evaluation sweep.
type ReplenishmentStats struct {
	RulesEvaluated int       `json:"rules_evaluated"`
	Triggered      int       `json:"triggered"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// EvaluateTenant evaluates every active reorder rule for a tenant and
// publishes a reorder.triggered event for each one whose projected quantity
// falls below its effective reorder point.
func (s *ReplenishmentService) EvaluateTenant(ctx context.Context, tenantID uuid.UUID) (*ReplenishmentStats, error) {
	stats := &ReplenishmentStats{ProcessedAt: time.Now()}

	rules, err := s.ruleRepo.FindActiveForTenant(ctx, tenantID, shared.Filter{Page: 1, PageSize: 0})
	if err != nil {
		s.logger.Error("Failed to load active reorder rules", zap.Error(err))
		return nil, err
	}
	stats.RulesEvaluated = len(rules)

	for i := range rules {
		triggered, err := s.evaluateRule(ctx, &rules[i])
		if err != nil {
			s.logger.Error("Failed to evaluate reorder rule",
				zap.String("rule_id", rules[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		if triggered {
			stats.Triggered++
		}
	}

	return stats, nil
}

func (s *ReplenishmentService) evaluateRule(ctx context.Context, rule *inventory.ReorderRule) (bool, error) {
	available, reserved, err := s.currentQuantities(ctx, rule)
	if err != nil {
		return false, err
	}

	incoming := s.lookupIncoming(ctx, rule)

	eval := rule.Evaluate(available, reserved, incoming)
	if !eval.Triggered {
		return false, nil
	}

	if s.eventBus != nil {
		event := inventory.NewReorderTriggeredEvent(rule, available, eval)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish reorder.triggered event",
				zap.String("rule_id", rule.ID.String()),
				zap.Error(err),
			)
		}
	}

	return true, nil
}

// currentQuantities sums available and reserved quantity across every
// inventory item matching the rule's scope (a specific warehouse, or every
// warehouse if the rule is warehouse-agnostic).
func (s *ReplenishmentService) currentQuantities(ctx context.Context, rule *inventory.ReorderRule) (available, reserved int64, err error) {
	if rule.WarehouseID != nil {
		item, err := s.inventoryRepo.FindByWarehouseAndProduct(ctx, rule.TenantID, *rule.WarehouseID, rule.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return 0, 0, nil
			}
			return 0, 0, err
		}
		return item.AvailableQuantity.IntPart(), item.LockedQuantity.IntPart(), nil
	}

	items, err := s.inventoryRepo.FindByProduct(ctx, rule.TenantID, rule.ProductID, shared.Filter{Page: 1, PageSize: 0})
	if err != nil {
		return 0, 0, err
	}
	for _, item := range items {
		available += item.AvailableQuantity.IntPart()
		reserved += item.LockedQuantity.IntPart()
	}
	return available, reserved, nil
}

func (s *ReplenishmentService) lookupIncoming(ctx context.Context, rule *inventory.ReorderRule) int64 {
	if s.incomingLookup == nil {
		return 0
	}
	incoming, err := s.incomingLookup(ctx, rule.TenantID, rule.ProductID, rule.WarehouseID)
	if err != nil {
		s.logger.Warn("Incoming quantity lookup unavailable, treating as 0",
			zap.String("rule_id", rule.ID.String()),
			zap.Error(err),
		)
		return 0
	}
	return incoming
}
