package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer by its ID
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Transfer, error) {
	var transfer stock.Transfer
	if err := r.db.WithContext(ctx).First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindAll finds transfers matching the filter
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.Transfer, error) {
	var transfers []stock.Transfer
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.Transfer{}), filter)
	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindByStatus finds transfers in the given lifecycle state
func (r *GormTransferRepository) FindByStatus(ctx context.Context, status stock.TransferStatus, filter shared.Filter) ([]stock.Transfer, error) {
	var transfers []stock.Transfer
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.Transfer{}).Where("status = ?", status),
		filter,
	)
	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Save creates or updates a transfer
func (r *GormTransferRepository) Save(ctx context.Context, transfer *stock.Transfer) error {
	return r.db.WithContext(ctx).Save(transfer).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormTransferRepository) SaveWithLock(ctx context.Context, transfer *stock.Transfer) error {
	result := r.db.WithContext(ctx).
		Model(transfer).
		Where("id = ? AND version = ?", transfer.ID, transfer.Version-1).
		Updates(map[string]interface{}{
			"status":       transfer.Status,
			"completed_at": transfer.CompletedAt,
			"unit_cost":    transfer.UnitCost,
			"total_cost":   transfer.TotalCost,
			"reason":       transfer.Reason,
			"version":      transfer.Version,
			"updated_at":   transfer.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a transfer
func (r *GormTransferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.Transfer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts transfers matching the filter
func (r *GormTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&stock.Transfer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormTransferRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TransferSortFields, "request_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTransferRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "material_id":
			query = query.Where("material_id = ?", value)
		case "from_warehouse_id":
			query = query.Where("from_warehouse_id = ?", value)
		case "to_warehouse_id":
			query = query.Where("to_warehouse_id = ?", value)
		case "date_from":
			query = query.Where("request_date >= ?", value)
		case "date_to":
			query = query.Where("request_date <= ?", value)
		}
	}
	return query
}

// Ensure GormTransferRepository implements TransferRepository
var _ stock.TransferRepository = (*GormTransferRepository)(nil)
