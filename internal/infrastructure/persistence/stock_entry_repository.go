package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restobo/backend/internal/domain/stock"
)

// GormStockEntryRepository implements StockEntryRepository using GORM. The
// stock_entries table is append-only; there are no update or delete paths.
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// Append inserts a new entry. The Sequence column is assigned by the database.
func (r *GormStockEntryRepository) Append(ctx context.Context, entry *stock.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AppendAll inserts several entries in one statement, preserving order
func (r *GormStockEntryRepository) AppendAll(ctx context.Context, entries []*stock.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByKey returns the full history for one (material, warehouse) key in
// canonical order
func (r *GormStockEntryRepository) FindByKey(ctx context.Context, materialID, warehouseID uuid.UUID) ([]stock.StockEntry, error) {
	var entries []stock.StockEntry
	if err := r.db.WithContext(ctx).
		Where("material_id = ? AND warehouse_id = ?", materialID, warehouseID).
		Order("occurred_at ASC, sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByKeyUpTo returns the history up to and including the cutoff date
func (r *GormStockEntryRepository) FindByKeyUpTo(ctx context.Context, materialID, warehouseID uuid.UUID, cutoff time.Time) ([]stock.StockEntry, error) {
	var entries []stock.StockEntry
	if err := r.db.WithContext(ctx).
		Where("material_id = ? AND warehouse_id = ? AND occurred_at <= ?", materialID, warehouseID, cutoff).
		Order("occurred_at ASC, sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DistinctKeys pages through every (material, warehouse) pair present in the
// log, ordered for stable iteration
func (r *GormStockEntryRepository) DistinctKeys(ctx context.Context, offset, limit int) ([]stock.StockKey, error) {
	var keys []stock.StockKey
	if err := r.db.WithContext(ctx).
		Model(&stock.StockEntry{}).
		Distinct("material_id", "warehouse_id").
		Order("material_id ASC, warehouse_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// CountByKey counts all entries for one (material, warehouse) key
func (r *GormStockEntryRepository) CountByKey(ctx context.Context, materialID, warehouseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.StockEntry{}).
		Where("material_id = ? AND warehouse_id = ?", materialID, warehouseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormStockEntryRepository implements StockEntryRepository
var _ stock.StockEntryRepository = (*GormStockEntryRepository)(nil)
