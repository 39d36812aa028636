package inventory

import (
	"time"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle state of a stock batch (lot).
type LotStatus string

const (
	// LotStatusActive is eligible for outbound selection (FIFO/FEFO/specified).
	LotStatusActive LotStatus = "active"
	// LotStatusReserved is held against a pending order and excluded from
	// further outbound selection until released back to active.
	LotStatusReserved LotStatus = "reserved"
	// LotStatusQuarantined is held back from outbound selection pending
	// disposition, typically because it passed its expiry date.
	LotStatusQuarantined LotStatus = "quarantined"
	// LotStatusConsumed has zero remaining quantity.
	LotStatusConsumed LotStatus = "consumed"
	// LotStatusExpired is a terminal state for lots disposed of after quarantine.
	LotStatusExpired LotStatus = "expired"
)

// IsValid returns true if the status is one of the defined lot states.
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusReserved, LotStatusQuarantined, LotStatusConsumed, LotStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of LotStatus
func (s LotStatus) String() string {
	return string(s)
}

// StockBatch represents a batch of stock with specific attributes
// (production date, expiry date, batch number, etc.)
type StockBatch struct {
	shared.BaseEntity
	InventoryItemID uuid.UUID
	BatchNumber     string          // Batch/lot number
	ProductionDate  *time.Time      // Date of production (optional)
	ExpiryDate      *time.Time      // Expiry date (optional)
	Quantity        decimal.Decimal // Quantity in this batch
	UnitCost        decimal.Decimal // Cost per unit for this batch
	Consumed        bool            // Whether this batch is fully consumed
	Status          LotStatus       // Lifecycle state; only active lots are eligible for FEFO/FIFO selection
}

// NewStockBatch creates a new stock batch
func NewStockBatch(
	inventoryItemID uuid.UUID,
	batchNumber string,
	productionDate, expiryDate *time.Time,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
) *StockBatch {
	return &StockBatch{
		BaseEntity:      shared.NewBaseEntity(),
		InventoryItemID: inventoryItemID,
		BatchNumber:     batchNumber,
		ProductionDate:  productionDate,
		ExpiryDate:      expiryDate,
		Quantity:        quantity,
		UnitCost:        unitCost,
		Consumed:        false,
		Status:          LotStatusActive,
	}
}

// IsExpired returns true if the batch has expired
func (b *StockBatch) IsExpired() bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now())
}

// WillExpireWithin returns true if the batch will expire within the given duration
func (b *StockBatch) WillExpireWithin(duration time.Duration) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now().Add(duration))
}

// DaysUntilExpiry returns the number of days until expiry, -1 if no expiry date
func (b *StockBatch) DaysUntilExpiry() int {
	if b.ExpiryDate == nil {
		return -1
	}
	duration := time.Until(*b.ExpiryDate)
	return int(duration.Hours() / 24)
}

// Deduct reduces the batch quantity
// Returns the actual quantity deducted (may be less than requested if batch has insufficient)
func (b *StockBatch) Deduct(quantity decimal.Decimal) decimal.Decimal {
	if quantity.GreaterThan(b.Quantity) {
		deducted := b.Quantity
		b.Quantity = decimal.Zero
		b.Consumed = true
		b.Status = LotStatusConsumed
		b.UpdatedAt = time.Now()
		return deducted
	}

	b.Quantity = b.Quantity.Sub(quantity)
	if b.Quantity.IsZero() {
		b.Consumed = true
		b.Status = LotStatusConsumed
	}
	b.UpdatedAt = time.Now()
	return quantity
}

// Add increases the batch quantity (for returns or adjustments)
func (b *StockBatch) Add(quantity decimal.Decimal) {
	b.Quantity = b.Quantity.Add(quantity)
	if b.Consumed && b.Quantity.GreaterThan(decimal.Zero) {
		b.Consumed = false
		b.Status = LotStatusActive
	}
	b.UpdatedAt = time.Now()
}

// Quarantine moves an active lot out of outbound selection pending
// disposition. Used by the expiry quarantine sweep (§4.C).
func (b *StockBatch) Quarantine() error {
	if b.Status != LotStatusActive {
		return shared.NewDomainError("INVALID_LOT_STATUS", "Only active lots can be quarantined")
	}
	b.Status = LotStatusQuarantined
	b.UpdatedAt = time.Now()
	return nil
}

// Reserve holds a lot against a pending order, excluding it from further
// FEFO/FIFO selection until Release is called.
func (b *StockBatch) Reserve() error {
	if b.Status != LotStatusActive {
		return shared.NewDomainError("INVALID_LOT_STATUS", "Only active lots can be reserved")
	}
	b.Status = LotStatusReserved
	b.UpdatedAt = time.Now()
	return nil
}

// Release returns a reserved lot to active, making it selectable again.
func (b *StockBatch) Release() error {
	if b.Status != LotStatusReserved {
		return shared.NewDomainError("INVALID_LOT_STATUS", "Only reserved lots can be released")
	}
	b.Status = LotStatusActive
	b.UpdatedAt = time.Now()
	return nil
}

// GetTotalValue returns the total value of this batch
func (b *StockBatch) GetTotalValue() decimal.Decimal {
	return b.Quantity.Mul(b.UnitCost)
}

// HasStock returns true if the batch has available quantity
func (b *StockBatch) HasStock() bool {
	return b.Quantity.GreaterThan(decimal.Zero) && !b.Consumed
}

// IsAvailable returns true if the batch can be used (not consumed, not
// expired, and in active status - reserved/quarantined/expired lots are
// excluded from outbound selection per the lot status model, §4.C)
func (b *StockBatch) IsAvailable() bool {
	status := b.Status
	if status == "" {
		status = LotStatusActive // zero-value backfill for batches predating the status field
	}
	return b.HasStock() && !b.IsExpired() && status == LotStatusActive
}
