// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the inventory substrate.
// It tracks stock movement volume, reservation outcomes, and inventory health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	stockMovementTotal         *Counter
	stockMovementQuantityTotal *Counter
	reservationTotal           *Counter

	// Gauge metrics (point-in-time values)
	inventoryLockedQuantity *Gauge
	inventoryLowStockCount  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	inventoryProvider InventoryMetricsProvider
}

// InventoryMetricsProvider provides inventory data for periodic metrics collection.
// This interface allows the telemetry layer to query inventory state without
// depending on the inventory domain directly.
type InventoryMetricsProvider interface {
	// GetLockedQuantityByWarehouse returns total locked quantity per warehouse for a tenant
	GetLockedQuantityByWarehouse(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error)

	// GetLowStockCount returns count of products below minimum threshold for a tenant
	GetLowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	InventoryProvider InventoryMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	// Initialize counter metrics
	var err error

	// Stock ledger metrics (§4.B)
	bm.stockMovementTotal, err = NewCounter(
		cfg.Meter,
		"stockledger_stock_movement_total",
		"Total number of stock ledger movements",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	bm.stockMovementQuantityTotal, err = NewCounter(
		cfg.Meter,
		"stockledger_stock_movement_quantity_total",
		"Total quantity moved, in minor units",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	// Reservation Engine metrics (§4.D)
	bm.reservationTotal, err = NewCounter(
		cfg.Meter,
		"stockledger_reservation_total",
		"Total number of stock reservation attempts",
		"{reservations}",
	)
	if err != nil {
		return nil, err
	}

	// Inventory gauge metrics
	bm.inventoryLockedQuantity, err = NewGauge(
		cfg.Meter,
		"stockledger_inventory_locked_quantity",
		"Current locked inventory quantity",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	bm.inventoryLowStockCount, err = NewGauge(
		cfg.Meter,
		"stockledger_inventory_low_stock_count",
		"Number of products below minimum stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Stock Ledger Metrics (§4.B)
// =============================================================================

// MovementType represents the kind of stock ledger movement for metrics labeling.
type MovementType string

const (
	MovementTypeReceipt    MovementType = "receipt"
	MovementTypeDeduction  MovementType = "deduction"
	MovementTypeAdjustment MovementType = "adjustment"
)

// RecordStockMovement records a stock ledger movement event.
// This should be called from the application layer whenever InventoryItem
// quantity is mutated (increase, deduct, or adjust).
func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, tenantID, warehouseID uuid.UUID, movementType MovementType) {
	bm.stockMovementTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrWarehouseID.String(warehouseID.String()),
		AttrMovementType.String(string(movementType)),
	)
}

// RecordStockMovementQuantity records the quantity moved, in minor units.
func (bm *BusinessMetrics) RecordStockMovementQuantity(ctx context.Context, tenantID, warehouseID uuid.UUID, movementType MovementType, quantityMinor int64) {
	bm.stockMovementQuantityTotal.Add(ctx, quantityMinor,
		AttrTenantID.String(tenantID.String()),
		AttrWarehouseID.String(warehouseID.String()),
		AttrMovementType.String(string(movementType)),
	)
}

// RecordStockMovementWithQuantity is a convenience method that records both
// the movement count and its quantity from a decimal amount (converted to
// minor units at the same scale as the wire/persistence boundary).
func (bm *BusinessMetrics) RecordStockMovementWithQuantity(ctx context.Context, tenantID, warehouseID uuid.UUID, movementType MovementType, quantity decimal.Decimal) {
	bm.RecordStockMovement(ctx, tenantID, warehouseID, movementType)

	quantityMinor := quantity.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordStockMovementQuantity(ctx, tenantID, warehouseID, movementType, quantityMinor)
}

// =============================================================================
// Reservation Engine Metrics (§4.D)
// =============================================================================

// ReservationOutcome represents the outcome of a stock reservation attempt
// for metrics labeling.
type ReservationOutcome string

const (
	ReservationOutcomeLocked            ReservationOutcome = "locked"
	ReservationOutcomeInsufficientStock ReservationOutcome = "insufficient_stock"
)

// RecordReservation records a stock reservation attempt.
// This should be called when LockStock succeeds or is rejected for
// insufficient available quantity.
func (bm *BusinessMetrics) RecordReservation(ctx context.Context, tenantID, warehouseID uuid.UUID, outcome ReservationOutcome) {
	bm.reservationTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrWarehouseID.String(warehouseID.String()),
		AttrReservationOutcome.String(string(outcome)),
	)
}

// RecordStockMovementLabeled records a stock movement using a string label
// rather than the typed MovementType. It lets callers outside this package
// (the application layer, which should not import telemetry's typed
// constants) satisfy a narrower metrics-recording interface structurally.
func (bm *BusinessMetrics) RecordStockMovementLabeled(ctx context.Context, tenantID, warehouseID uuid.UUID, movementType string, quantity decimal.Decimal) {
	bm.RecordStockMovementWithQuantity(ctx, tenantID, warehouseID, MovementType(movementType), quantity)
}

// RecordReservationLabeled records a reservation outcome using a string label.
func (bm *BusinessMetrics) RecordReservationLabeled(ctx context.Context, tenantID, warehouseID uuid.UUID, outcome string) {
	bm.RecordReservation(ctx, tenantID, warehouseID, ReservationOutcome(outcome))
}

// =============================================================================
// Inventory Metrics
// =============================================================================

// RecordLockedQuantity records the current locked inventory quantity for a warehouse.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordLockedQuantity(ctx context.Context, tenantID, warehouseID uuid.UUID, quantity int64) {
	bm.inventoryLockedQuantity.Record(ctx, quantity,
		AttrTenantID.String(tenantID.String()),
		AttrWarehouseID.String(warehouseID.String()),
	)
}

// RecordLowStockCount records the number of products below minimum threshold.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.inventoryLowStockCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects inventory metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectInventoryMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx, tenantProvider)
		}
	}
}

// collectInventoryMetrics collects inventory gauge metrics for all tenants.
func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantInventoryMetrics(ctx, tenantID)
	}
}

// collectTenantInventoryMetrics collects inventory metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantInventoryMetrics(ctx context.Context, tenantID uuid.UUID) {
	// Collect locked quantity by warehouse
	lockedByWarehouse, err := bm.inventoryProvider.GetLockedQuantityByWarehouse(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get locked quantity for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		for warehouseID, quantity := range lockedByWarehouse {
			bm.RecordLockedQuantity(ctx, tenantID, warehouseID, quantity)
		}
	}

	// Collect low stock count
	lowStockCount, err := bm.inventoryProvider.GetLowStockCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordLowStockCount(ctx, tenantID, lowStockCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

