package inventory

import (
	"context"
	"time"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LotQuarantineService moves expired, still-active lots into quarantine so
// they stop being eligible for FIFO/FEFO/specified outbound selection
// (spec.md §4.C). It is driven by a periodic sweep rather than request
// traffic, mirroring StockLockExpirationService.
type LotQuarantineService struct {
	batchRepo     inventory.StockBatchRepository
	inventoryRepo inventory.InventoryItemRepository
	eventBus      shared.EventBus
	logger        *zap.Logger
}

// NewLotQuarantineService creates a new LotQuarantineService.
func NewLotQuarantineService(
	batchRepo inventory.StockBatchRepository,
	inventoryRepo inventory.InventoryItemRepository,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *LotQuarantineService {
	return &LotQuarantineService{
		batchRepo:     batchRepo,
		inventoryRepo: inventoryRepo,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// QuarantineStats summarizes a single quarantine sweep pass for one tenant.
type QuarantineStats struct {
	TotalExpired int       `json:"total_expired"`
	Quarantined  int       `json:"quarantined"`
	Failed       int       `json:"failed"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// QuarantineExpiredLots finds every active lot past its expiry date for the
// given tenant and transitions each to quarantined, persisting the change
// through the owning InventoryItem aggregate (StockBatch is a child entity;
// see the aggregate-boundary note on StockBatchRepository).
func (s *LotQuarantineService) QuarantineExpiredLots(ctx context.Context, tenantID uuid.UUID) (*QuarantineStats, error) {
	stats := &QuarantineStats{ProcessedAt: time.Now()}

	expired, err := s.batchRepo.FindExpired(ctx, tenantID, shared.Filter{})
	if err != nil {
		s.logger.Error("Failed to find expired lots", zap.Error(err))
		return nil, err
	}

	stats.TotalExpired = len(expired)
	if stats.TotalExpired == 0 {
		s.logger.Debug("No expired lots found for quarantine", zap.String("tenant_id", tenantID.String()))
		return stats, nil
	}

	s.logger.Info("Found expired lots pending quarantine",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("count", stats.TotalExpired),
	)

	for i := range expired {
		if err := s.quarantineLot(ctx, tenantID, &expired[i]); err != nil {
			s.logger.Error("Failed to quarantine lot",
				zap.String("batch_id", expired[i].ID.String()),
				zap.String("batch_number", expired[i].BatchNumber),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Quarantined++
	}

	s.logger.Info("Completed lot quarantine sweep",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("total", stats.TotalExpired),
		zap.Int("quarantined", stats.Quarantined),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

func (s *LotQuarantineService) quarantineLot(ctx context.Context, tenantID uuid.UUID, batch *inventory.StockBatch) error {
	item, err := s.inventoryRepo.FindByID(ctx, batch.InventoryItemID)
	if err != nil {
		return err
	}

	var target *inventory.StockBatch
	for i := range item.Batches {
		if item.Batches[i].ID == batch.ID {
			target = &item.Batches[i]
			break
		}
	}
	if target == nil {
		return shared.ErrNotFound
	}

	if err := target.Quarantine(); err != nil {
		// Already transitioned by a concurrent sweep or a manual reservation;
		// treat as a no-op rather than a failure.
		if de, ok := err.(*shared.DomainError); ok && de.Code == "INVALID_LOT_STATUS" {
			return nil
		}
		return err
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return err
	}

	if s.eventBus != nil {
		event := inventory.NewLotQuarantinedEvent(
			tenantID,
			item.ID,
			item.WarehouseID,
			item.ProductID,
			target.ID,
			target.BatchNumber,
			target.Quantity,
			timeOrZero(target.ExpiryDate),
		)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish LotQuarantined event",
				zap.String("batch_id", target.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("Quarantined expired lot",
		zap.String("batch_id", target.ID.String()),
		zap.String("batch_number", target.BatchNumber),
		zap.String("inventory_item_id", item.ID.String()),
	)

	return nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
