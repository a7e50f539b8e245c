package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

// GormWarehouseStockRepository implements WarehouseStockRepository using GORM
type GormWarehouseStockRepository struct {
	db *gorm.DB
}

// NewGormWarehouseStockRepository creates a new GormWarehouseStockRepository
func NewGormWarehouseStockRepository(db *gorm.DB) *GormWarehouseStockRepository {
	return &GormWarehouseStockRepository{db: db}
}

// FindByID finds a stock row by its ID
func (r *GormWarehouseStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.WarehouseStock, error) {
	var row stock.WarehouseStock
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByKey finds the projection for one (material, warehouse) pair
func (r *GormWarehouseStockRepository) FindByKey(ctx context.Context, materialID, warehouseID uuid.UUID) (*stock.WarehouseStock, error) {
	var row stock.WarehouseStock
	if err := r.db.WithContext(ctx).
		Where("material_id = ? AND warehouse_id = ?", materialID, warehouseID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByWarehouse finds all stock rows in a warehouse
func (r *GormWarehouseStockRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]stock.WarehouseStock, error) {
	var rows []stock.WarehouseStock
	query := r.db.WithContext(ctx).
		Model(&stock.WarehouseStock{}).
		Where("warehouse_id = ?", warehouseID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, WarehouseStockSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByMaterial finds the stock rows for a material across all warehouses
func (r *GormWarehouseStockRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID) ([]stock.WarehouseStock, error) {
	var rows []stock.WarehouseStock
	if err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindLowStock finds rows that fell below their minimum threshold
func (r *GormWarehouseStockRepository) FindLowStock(ctx context.Context, warehouseID uuid.UUID) ([]stock.WarehouseStock, error) {
	var rows []stock.WarehouseStock
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND minimum_stock > 0 AND current_stock < minimum_stock", warehouseID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save creates or updates a stock row without a version check. Used for
// freshly created projections only.
func (r *GormWarehouseStockRepository) Save(ctx context.Context, row *stock.WarehouseStock) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormWarehouseStockRepository) SaveWithLock(ctx context.Context, row *stock.WarehouseStock) error {
	result := r.db.WithContext(ctx).
		Model(row).
		Where("id = ? AND version = ?", row.ID, row.Version-1).
		Updates(map[string]interface{}{
			"current_stock":  row.CurrentStock,
			"reserved_stock": row.ReservedStock,
			"minimum_stock":  row.MinimumStock,
			"average_cost":   row.AverageCost,
			"location":       row.Location,
			"version":        row.Version,
			"updated_at":     row.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// TotalQuantity sums CurrentStock across a warehouse
func (r *GormWarehouseStockRepository) TotalQuantity(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.WarehouseStock{}).
		Select("COALESCE(SUM(current_stock), 0) as total").
		Where("warehouse_id = ?", warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// WeightedAverageCost computes sum(qty*cost)/sum(qty) across all warehouses
// holding the material. Rows with zero stock contribute nothing; a material
// with no stock anywhere averages to zero.
func (r *GormWarehouseStockRepository) WeightedAverageCost(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		TotalQty   decimal.Decimal
		TotalValue decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.WarehouseStock{}).
		Select("COALESCE(SUM(current_stock), 0) as total_qty, COALESCE(SUM(current_stock * average_cost), 0) as total_value").
		Where("material_id = ?", materialID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	if !result.TotalQty.IsPositive() {
		return decimal.Zero, nil
	}
	return result.TotalValue.DivRound(result.TotalQty, 4), nil
}

// Ensure GormWarehouseStockRepository implements WarehouseStockRepository
var _ stock.WarehouseStockRepository = (*GormWarehouseStockRepository)(nil)
