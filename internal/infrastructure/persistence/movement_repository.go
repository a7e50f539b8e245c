package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/restobo/backend/internal/domain/report"
)

// GormMovementRepository implements MovementRepository using GORM. It folds
// the stock entry log into one row per (warehouse, material): the signed sum
// of everything before the window as the opening pair, plus per-kind sums
// inside the window, joined with material, category and warehouse names. The
// material's category is the sub category; its parent is the main category,
// falling back to the category itself for materials filed directly under a
// main category.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindMovements produces the report leaves for one window
func (r *GormMovementRepository) FindMovements(ctx context.Context, filter report.MovementFilter) ([]report.MovementRow, error) {
	var rows []report.MovementRow

	query := r.db.WithContext(ctx).Table("stock_entries se").
		Select(`
			se.warehouse_id,
			w.name as warehouse_name,
			COALESCE(pc.id, c.id) as main_category_id,
			COALESCE(pc.name, c.name) as main_category_name,
			c.id as sub_category_id,
			c.name as sub_category_name,
			se.material_id,
			m.name as material_name,
			m.consumption_unit as unit,
			m.default_tax_rate as tax_rate,
			COALESCE(SUM(CASE WHEN se.occurred_at < ? THEN
				CASE WHEN se.kind IN ('PURCHASE_IN','TRANSFER_IN','PRODUCTION_IN','ADJUSTMENT_IN') THEN se.quantity ELSE -se.quantity END
			ELSE 0 END), 0) as opening_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at < ? THEN
				CASE WHEN se.kind IN ('PURCHASE_IN','TRANSFER_IN','PRODUCTION_IN','ADJUSTMENT_IN') THEN se.total_cost ELSE -se.total_cost END
			ELSE 0 END), 0) as opening_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'PURCHASE_IN' THEN se.quantity ELSE 0 END), 0) as purchase_in_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'PURCHASE_IN' THEN se.total_cost ELSE 0 END), 0) as purchase_in_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'TRANSFER_IN' THEN se.quantity ELSE 0 END), 0) as transfer_in_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'TRANSFER_IN' THEN se.total_cost ELSE 0 END), 0) as transfer_in_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'TRANSFER_OUT' THEN se.quantity ELSE 0 END), 0) as transfer_out_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'TRANSFER_OUT' THEN se.total_cost ELSE 0 END), 0) as transfer_out_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'PRODUCTION_IN' THEN se.quantity ELSE 0 END), 0) as production_in_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'PRODUCTION_IN' THEN se.total_cost ELSE 0 END), 0) as production_in_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'PRODUCTION_OUT' THEN se.quantity ELSE 0 END), 0) as production_out_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'PRODUCTION_OUT' THEN se.total_cost ELSE 0 END), 0) as production_out_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'ADJUSTMENT_IN' THEN se.quantity ELSE 0 END), 0) as adjustment_in_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'ADJUSTMENT_IN' THEN se.total_cost ELSE 0 END), 0) as adjustment_in_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'ADJUSTMENT_OUT' THEN se.quantity ELSE 0 END), 0) as adjustment_out_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'ADJUSTMENT_OUT' THEN se.total_cost ELSE 0 END), 0) as adjustment_out_value,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'RETURN_OUT' THEN se.quantity ELSE 0 END), 0) as return_out_qty,
			COALESCE(SUM(CASE WHEN se.occurred_at >= ? AND se.occurred_at <= ? AND se.kind = 'RETURN_OUT' THEN se.total_cost ELSE 0 END), 0) as return_out_value
		`, movementArgs(filter)...).
		Joins("JOIN materials m ON m.id = se.material_id").
		Joins("JOIN warehouses w ON w.id = se.warehouse_id").
		Joins("JOIN categories c ON c.id = m.category_id").
		Joins("LEFT JOIN categories pc ON pc.id = c.parent_id").
		Where("se.occurred_at <= ?", filter.EndDate)

	if len(filter.WarehouseIDs) > 0 {
		query = query.Where("se.warehouse_id IN ?", filter.WarehouseIDs)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("(c.id IN ? OR pc.id IN ?)", filter.CategoryIDs, filter.CategoryIDs)
	}

	query = query.
		Group("se.warehouse_id, w.name, pc.id, pc.name, c.id, c.name, se.material_id, m.name, m.consumption_unit, m.default_tax_rate").
		Order("w.name ASC, m.name ASC")

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// movementArgs builds the positional arguments for the select: two window
// starts for the opening pair, then a (start, end) pair per movement column.
func movementArgs(filter report.MovementFilter) []interface{} {
	args := []interface{}{filter.StartDate, filter.StartDate}
	for i := 0; i < 16; i++ {
		args = append(args, filter.StartDate, filter.EndDate)
	}
	return args
}

// Ensure GormMovementRepository implements MovementRepository
var _ report.MovementRepository = (*GormMovementRepository)(nil)
