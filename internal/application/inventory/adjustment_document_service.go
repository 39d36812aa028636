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

// adjustmentIdempotencyTTL bounds how long a (document_id, line_id) posting
// key is remembered, matching the idempotency window used elsewhere for
// inbound event processing.
const adjustmentIdempotencyTTL = 24 * time.Hour

// AdjustmentDocumentService provides application services for creating,
// editing, posting, and cancelling adjustment documents (spec.md §4.F).
//
// Posting is idempotent on the document identifier: re-posting an already
// posted document is a no-op, and each line's stock move is only applied
// once, enforced via the Idempotency Registry keyed on
// (document_id, line_id) rather than the DB-level idempotency key used by
// IncreaseStock/DecreaseStock for transaction replay (I-4) - the two guard
// different things and are intentionally layered.
type AdjustmentDocumentService struct {
	docRepo          inventory.AdjustmentDocumentRepository
	inventoryService *InventoryService
	eventBus         shared.EventBus
	idempotencyStore shared.IdempotencyStore
	logger           *zap.Logger
}

// NewAdjustmentDocumentService creates a new AdjustmentDocumentService.
func NewAdjustmentDocumentService(
	docRepo inventory.AdjustmentDocumentRepository,
	inventoryService *InventoryService,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *AdjustmentDocumentService {
	return &AdjustmentDocumentService{
		docRepo:          docRepo,
		inventoryService: inventoryService,
		eventBus:         eventBus,
		logger:           logger,
	}
}

// SetIdempotencyStore sets the Idempotency Registry backing posting
// idempotency. Optional: when nil, Post falls back to relying solely on the
// document/line Posted flags already persisted on the aggregate, which is
// still correct for a single replica but does not protect against two
// concurrent Post calls racing before either has saved.
func (s *AdjustmentDocumentService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// ===================== Query Methods =====================

// GetByID retrieves an adjustment document by ID.
func (s *AdjustmentDocumentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AdjustmentDocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToAdjustmentDocumentResponse(doc)
	return &response, nil
}

// GetByDocumentNumber retrieves an adjustment document by its number.
func (s *AdjustmentDocumentService) GetByDocumentNumber(ctx context.Context, tenantID uuid.UUID, documentNumber string) (*AdjustmentDocumentResponse, error) {
	doc, err := s.docRepo.FindByDocumentNumber(ctx, tenantID, documentNumber)
	if err != nil {
		return nil, err
	}
	response := ToAdjustmentDocumentResponse(doc)
	return &response, nil
}

// List retrieves a paginated list of adjustment documents for a tenant.
func (s *AdjustmentDocumentService) List(ctx context.Context, tenantID uuid.UUID, filter AdjustmentDocumentListFilter) ([]AdjustmentDocumentListResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	var docs []inventory.AdjustmentDocument
	var err error
	if filter.Status != nil {
		docs, err = s.docRepo.FindByStatus(ctx, tenantID, *filter.Status, domainFilter)
	} else if filter.WarehouseID != nil {
		docs, err = s.docRepo.FindByWarehouse(ctx, tenantID, *filter.WarehouseID, domainFilter)
	} else {
		docs, err = s.docRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	return ToAdjustmentDocumentListResponses(docs), int64(len(docs)), nil
}

// ===================== Command Methods =====================

// Create opens a new draft adjustment document.
func (s *AdjustmentDocumentService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAdjustmentDocumentRequest) (*AdjustmentDocumentResponse, error) {
	documentNumber, err := s.docRepo.GenerateDocumentNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	doc, err := inventory.NewAdjustmentDocument(
		tenantID,
		req.WarehouseID,
		req.WarehouseName,
		documentNumber,
		req.Reason,
		req.CreatedByID,
		req.CreatedByName,
	)
	if err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)

	response := ToAdjustmentDocumentResponse(doc)
	return &response, nil
}

// AddLine adds a correction line to a draft adjustment document.
func (s *AdjustmentDocumentService) AddLine(ctx context.Context, tenantID, id uuid.UUID, req AddAdjustmentLineRequest) (*AdjustmentDocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	deltaQuantity := shared.QuantityMinorToDecimal(req.DeltaQuantityMinor)
	unitCost := shared.MoneyMinorToDecimal(req.UnitCostMinor)

	if err := doc.AddLine(req.ProductID, deltaQuantity, unitCost, req.Remark); err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToAdjustmentDocumentResponse(doc)
	return &response, nil
}

// RemoveLine removes a line from a draft adjustment document.
func (s *AdjustmentDocumentService) RemoveLine(ctx context.Context, tenantID, id, lineID uuid.UUID) (*AdjustmentDocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := doc.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToAdjustmentDocumentResponse(doc)
	return &response, nil
}

// Post applies every unposted line's delta to the Stock Ledger and
// transitions the document to posted. Re-posting an already posted document
// returns its current state without emitting duplicate moves (spec.md §4.F).
func (s *AdjustmentDocumentService) Post(ctx context.Context, tenantID, id uuid.UUID, operatorID *uuid.UUID) (*AdjustmentDocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if doc.Status == inventory.AdjustmentDocumentStatusPosted {
		response := ToAdjustmentDocumentResponse(doc)
		return &response, nil
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.Posted {
			continue
		}

		key := s.lineIdempotencyKey(doc.ID, line.ID)
		if s.idempotencyStore != nil {
			processed, err := s.idempotencyStore.IsProcessed(ctx, key)
			if err != nil {
				return nil, err
			}
			if processed {
				if err := doc.MarkLinePosted(line.ID); err != nil {
					return nil, err
				}
				continue
			}
		}

		if err := s.postLine(ctx, tenantID, doc, line, operatorID); err != nil {
			return nil, err
		}

		if s.idempotencyStore != nil {
			if _, err := s.idempotencyStore.MarkProcessed(ctx, key, adjustmentIdempotencyTTL); err != nil {
				s.logger.Warn("Failed to record adjustment line idempotency key",
					zap.String("document_id", doc.ID.String()),
					zap.String("line_id", line.ID.String()),
					zap.Error(err),
				)
			}
		}

		if err := doc.MarkLinePosted(line.ID); err != nil {
			return nil, err
		}
	}

	if err := doc.Post(); err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)

	response := ToAdjustmentDocumentResponse(doc)
	return &response, nil
}

// postLine applies a single line's signed delta through the Stock Ledger:
// positive deltas post as a receipt (IncreaseStock), negative deltas post as
// an outbound deduction (DecreaseStock).
func (s *AdjustmentDocumentService) postLine(ctx context.Context, tenantID uuid.UUID, doc *inventory.AdjustmentDocument, line *inventory.AdjustmentDocumentLine, operatorID *uuid.UUID) error {
	reference := fmt.Sprintf("%s/%s", doc.DocumentNumber, line.ID)

	if line.DeltaQuantity.IsPositive() {
		_, err := s.inventoryService.IncreaseStock(ctx, tenantID, IncreaseStockRequest{
			WarehouseID:   line.WarehouseID,
			ProductID:     line.ProductID,
			QuantityMinor: shared.DecimalToQuantityMinor(line.DeltaQuantity),
			UnitCostMinor: shared.DecimalToMoneyMinor(line.UnitCost),
			SourceType:    string(inventory.SourceTypeManualAdjustment),
			SourceID:      doc.ID.String(),
			Reference:     reference,
			Reason:        doc.Reason,
			OperatorID:    operatorID,
		})
		return err
	}

	return s.inventoryService.DecreaseStock(ctx, tenantID, DecreaseStockRequest{
		WarehouseID: line.WarehouseID,
		ProductID:   line.ProductID,
		Quantity:    line.DeltaQuantity.Abs(),
		SourceType:  string(inventory.SourceTypeManualAdjustment),
		SourceID:    doc.ID.String(),
		Reference:   reference,
		Reason:      doc.Reason,
		OperatorID:  operatorID,
	})
}

// Cancel cancels a draft adjustment document. Posted documents cannot be
// cancelled (spec.md §4.F).
func (s *AdjustmentDocumentService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelAdjustmentDocumentRequest) (*AdjustmentDocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := doc.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)

	response := ToAdjustmentDocumentResponse(doc)
	return &response, nil
}

func (s *AdjustmentDocumentService) lineIdempotencyKey(documentID, lineID uuid.UUID) string {
	return fmt.Sprintf("adjustment-document:%s:%s", documentID, lineID)
}

func (s *AdjustmentDocumentService) publishEvents(ctx context.Context, doc *inventory.AdjustmentDocument) {
	if s.eventBus == nil {
		return
	}

	for _, event := range doc.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil && s.logger != nil {
			s.logger.Warn("Failed to publish adjustment document event",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err),
			)
		}
	}
	doc.ClearDomainEvents()
}
