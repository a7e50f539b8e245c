package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

// GormProductionRepository implements ProductionRepository using GORM.
// Production items are loaded and saved together with their run.
type GormProductionRepository struct {
	db *gorm.DB
}

// NewGormProductionRepository creates a new GormProductionRepository
func NewGormProductionRepository(db *gorm.DB) *GormProductionRepository {
	return &GormProductionRepository{db: db}
}

// FindByID finds a production run with its items
func (r *GormProductionRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.OpenProduction, error) {
	var production stock.OpenProduction
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&production, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &production, nil
}

// FindAll finds production runs matching the filter
func (r *GormProductionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.OpenProduction, error) {
	var productions []stock.OpenProduction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.OpenProduction{}).Preload("Items"),
		filter,
	)
	if err := query.Find(&productions).Error; err != nil {
		return nil, err
	}
	return productions, nil
}

// FindByStatus finds production runs in the given lifecycle state
func (r *GormProductionRepository) FindByStatus(ctx context.Context, status stock.ProductionStatus, filter shared.Filter) ([]stock.OpenProduction, error) {
	var productions []stock.OpenProduction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.OpenProduction{}).Preload("Items").Where("status = ?", status),
		filter,
	)
	if err := query.Find(&productions).Error; err != nil {
		return nil, err
	}
	return productions, nil
}

// Save creates or updates a production run together with its items. Items
// removed from the run are deleted via replace semantics.
func (r *GormProductionRepository) Save(ctx context.Context, production *stock.OpenProduction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(production).Error; err != nil {
			return err
		}
		return r.saveItems(tx, production)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormProductionRepository) SaveWithLock(ctx context.Context, production *stock.OpenProduction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(production).
			Where("id = ? AND version = ?", production.ID, production.Version-1).
			Updates(map[string]interface{}{
				"status":       production.Status,
				"completed_at": production.CompletedAt,
				"total_cost":   production.TotalCost,
				"version":      production.Version,
				"updated_at":   production.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveItems(tx, production)
	})
}

// saveItems replaces the run's item set with the in-memory one
func (r *GormProductionRepository) saveItems(tx *gorm.DB, production *stock.OpenProduction) error {
	keep := make([]uuid.UUID, 0, len(production.Items))
	for i := range production.Items {
		keep = append(keep, production.Items[i].ID)
	}

	query := tx.Where("production_id = ?", production.ID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	if err := query.Delete(&stock.ProductionItem{}).Error; err != nil {
		return err
	}

	for i := range production.Items {
		if err := tx.Save(&production.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a production run and its items
func (r *GormProductionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&stock.ProductionItem{}, "production_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&stock.OpenProduction{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts production runs matching the filter
func (r *GormProductionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&stock.OpenProduction{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormProductionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductionSortFields, "production_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "produced_material_id":
			query = query.Where("produced_material_id = ?", value)
		case "production_warehouse_id":
			query = query.Where("production_warehouse_id = ?", value)
		case "date_from":
			query = query.Where("production_date >= ?", value)
		case "date_to":
			query = query.Where("production_date <= ?", value)
		}
	}
	return query
}

// Ensure GormProductionRepository implements ProductionRepository
var _ stock.ProductionRepository = (*GormProductionRepository)(nil)
