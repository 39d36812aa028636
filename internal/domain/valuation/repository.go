package valuation

import (
	"context"

	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// ValuationAccountRepository defines persistence for the ValuationAccount
// aggregate, one row per (tenant, warehouse, product) costing scope.
type ValuationAccountRepository interface {
	// FindByID finds an account by ID within a tenant.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ValuationAccount, error)

	// FindByWarehouseAndProduct finds the account for a warehouse-product
	// scope, the natural key the Valuation Engine is keyed on.
	FindByWarehouseAndProduct(ctx context.Context, tenantID, warehouseID, productID uuid.UUID) (*ValuationAccount, error)

	// FindByProduct finds every warehouse-scoped account for a product.
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]ValuationAccount, error)

	// Save creates or updates an account.
	Save(ctx context.Context, account *ValuationAccount) error

	// SaveWithLock persists an account using Version-1 as the expected
	// prior version (mutators increment Version before returning), returning
	// shared.ErrConcurrencyConflict if another writer updated it first.
	SaveWithLock(ctx context.Context, account *ValuationAccount) error

	// Delete removes an account within a tenant.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// LockForFIFOConsumption takes an exclusive advisory lock scoped to
	// (tenantID, productID), held for the remainder of the enclosing
	// transaction, so two concurrent deliveries cannot double-spend the same
	// FIFO layer (spec.md §4.N, §5). A no-op outside a transaction.
	LockForFIFOConsumption(ctx context.Context, tenantID, productID uuid.UUID) error
}

// ValuationHistoryRepository defines persistence for append-only
// ValuationHistory audit rows.
type ValuationHistoryRepository interface {
	// FindByAccount returns an account's history, newest first.
	FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]ValuationHistory, error)

	// Save appends a history row. History rows are never updated in place.
	Save(ctx context.Context, history *ValuationHistory) error
}
