package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stockledger/platform/internal/domain/inventory"
	"github.com/stockledger/platform/internal/domain/shared"
	"github.com/stockledger/platform/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAdjustmentDocumentRepository implements AdjustmentDocumentRepository using GORM
type GormAdjustmentDocumentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentDocumentRepository creates a new GormAdjustmentDocumentRepository
func NewGormAdjustmentDocumentRepository(db *gorm.DB) *GormAdjustmentDocumentRepository {
	return &GormAdjustmentDocumentRepository{db: db}
}

// FindByID finds an adjustment document by its ID
func (r *GormAdjustmentDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.AdjustmentDocument, error) {
	var model models.AdjustmentDocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an adjustment document by ID within a tenant
func (r *GormAdjustmentDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.AdjustmentDocument, error) {
	var model models.AdjustmentDocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDocumentNumber finds an adjustment document by its number
func (r *GormAdjustmentDocumentRepository) FindByDocumentNumber(ctx context.Context, tenantID uuid.UUID, documentNumber string) (*inventory.AdjustmentDocument, error) {
	var model models.AdjustmentDocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND document_number = ?", tenantID, documentNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWarehouse finds all adjustment documents for a warehouse
func (r *GormAdjustmentDocumentRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.AdjustmentDocument, error) {
	var docModels []models.AdjustmentDocumentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AdjustmentDocumentModel{}).
			Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID),
		filter,
	)

	if err := query.Find(&docModels).Error; err != nil {
		return nil, err
	}
	docs := make([]inventory.AdjustmentDocument, len(docModels))
	for i, model := range docModels {
		docs[i] = *model.ToDomain()
	}
	return docs, nil
}

// FindByStatus finds all adjustment documents with a specific status
func (r *GormAdjustmentDocumentRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status inventory.AdjustmentDocumentStatus, filter shared.Filter) ([]inventory.AdjustmentDocument, error) {
	var docModels []models.AdjustmentDocumentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AdjustmentDocumentModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&docModels).Error; err != nil {
		return nil, err
	}
	docs := make([]inventory.AdjustmentDocument, len(docModels))
	for i, model := range docModels {
		docs[i] = *model.ToDomain()
	}
	return docs, nil
}

// FindAllForTenant finds all adjustment documents for a tenant
func (r *GormAdjustmentDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.AdjustmentDocument, error) {
	var docModels []models.AdjustmentDocumentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AdjustmentDocumentModel{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&docModels).Error; err != nil {
		return nil, err
	}
	docs := make([]inventory.AdjustmentDocument, len(docModels))
	for i, model := range docModels {
		docs[i] = *model.ToDomain()
	}
	return docs, nil
}

// Save creates or updates an adjustment document header and its lines in a transaction
func (r *GormAdjustmentDocumentRepository) Save(ctx context.Context, d *inventory.AdjustmentDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.AdjustmentDocumentModelFromDomain(d)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		var keepLineIDs []uuid.UUID
		for _, line := range d.Lines {
			keepLineIDs = append(keepLineIDs, line.ID)
		}

		if len(keepLineIDs) > 0 {
			if err := tx.Where("adjustment_document_id = ? AND id NOT IN ?", d.ID, keepLineIDs).
				Delete(&models.AdjustmentDocumentLineModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("adjustment_document_id = ?", d.ID).
				Delete(&models.AdjustmentDocumentLineModel{}).Error; err != nil {
				return err
			}
		}

		for i := range d.Lines {
			d.Lines[i].AdjustmentDocumentID = d.ID
			lineModel := models.AdjustmentDocumentLineModelFromDomain(&d.Lines[i])
			if err := tx.Save(lineModel).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes an adjustment document within a tenant
func (r *GormAdjustmentDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.AdjustmentDocumentModel
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("adjustment_document_id = ?", id).Delete(&models.AdjustmentDocumentLineModel{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model).Error
	})
}

// ExistsByDocumentNumber checks if a document number exists
func (r *GormAdjustmentDocumentRepository) ExistsByDocumentNumber(ctx context.Context, tenantID uuid.UUID, documentNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdjustmentDocumentModel{}).
		Where("tenant_id = ? AND document_number = ?", tenantID, documentNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateDocumentNumber generates a new unique document number
func (r *GormAdjustmentDocumentRepository) GenerateDocumentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	// Format: ADJ-YYYYMMDD-XXXX
	today := time.Now().Format("20060102")
	prefix := fmt.Sprintf("ADJ-%s-", today)

	var maxNumber string
	err := r.db.WithContext(ctx).Model(&models.AdjustmentDocumentModel{}).
		Select("document_number").
		Where("tenant_id = ? AND document_number LIKE ?", tenantID, prefix+"%").
		Order("document_number DESC").
		Limit(1).
		Pluck("document_number", &maxNumber).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var seq int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) >= 3 {
			_, err := fmt.Sscanf(parts[len(parts)-1], "%04d", &seq)
			if err == nil {
				seq++
			}
		}
	}
	if seq == 0 {
		seq = 1
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// applyFilter applies common filter options to a query
func (r *GormAdjustmentDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(document_number) LIKE ? OR LOWER(warehouse_name) LIKE ? OR LOWER(created_by_name) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AdjustmentDocumentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	return query
}

// Ensure GormAdjustmentDocumentRepository implements AdjustmentDocumentRepository
var _ inventory.AdjustmentDocumentRepository = (*GormAdjustmentDocumentRepository)(nil)
