package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// StockKey identifies one (material, warehouse) projection
type StockKey struct {
	MaterialID  uuid.UUID
	WarehouseID uuid.UUID
}

// MaterialRepository handles material persistence
type MaterialRepository interface {
	shared.Repository[Material]
	SaveWithLock(ctx context.Context, material *Material) error
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Material, error)
}

// CategoryRepository handles the material category hierarchy
type CategoryRepository interface {
	shared.Repository[Category]
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)
	FindMain(ctx context.Context) ([]Category, error)
}

// WarehouseRepository handles warehouse persistence
type WarehouseRepository interface {
	shared.Repository[Warehouse]
}

// WarehouseStockRepository handles the materialized stock projections
type WarehouseStockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WarehouseStock, error)
	// FindByKey looks up the projection for one (material, warehouse) pair;
	// returns ErrNotFound when no row exists yet
	FindByKey(ctx context.Context, materialID, warehouseID uuid.UUID) (*WarehouseStock, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]WarehouseStock, error)
	FindByMaterial(ctx context.Context, materialID uuid.UUID) ([]WarehouseStock, error)
	FindLowStock(ctx context.Context, warehouseID uuid.UUID) ([]WarehouseStock, error)
	Save(ctx context.Context, stock *WarehouseStock) error
	// SaveWithLock persists with optimistic concurrency control on Version
	SaveWithLock(ctx context.Context, stock *WarehouseStock) error
	// TotalQuantity sums CurrentStock across a warehouse, for capacity
	// utilization
	TotalQuantity(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error)
	// WeightedAverageCost computes sum(qty*cost)/sum(qty) across all
	// warehouses holding the material, for the material-level projection
	WeightedAverageCost(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error)
}

// StockEntryRepository handles the append-only stock entry log. Entries are
// never updated or deleted.
type StockEntryRepository interface {
	Append(ctx context.Context, entry *StockEntry) error
	AppendAll(ctx context.Context, entries []*StockEntry) error
	// FindByKey returns the full history for one key in
	// (occurred_at, sequence) order
	FindByKey(ctx context.Context, materialID, warehouseID uuid.UUID) ([]StockEntry, error)
	// FindByKeyUpTo returns the history up to and including the cutoff date
	FindByKeyUpTo(ctx context.Context, materialID, warehouseID uuid.UUID, cutoff time.Time) ([]StockEntry, error)
	// DistinctKeys pages through every (material, warehouse) pair present in
	// the log, in a stable order, for recalculation
	DistinctKeys(ctx context.Context, offset, limit int) ([]StockKey, error)
	CountByKey(ctx context.Context, materialID, warehouseID uuid.UUID) (int64, error)
}

// TransferRepository handles transfer persistence
type TransferRepository interface {
	shared.Repository[Transfer]
	SaveWithLock(ctx context.Context, transfer *Transfer) error
	FindByStatus(ctx context.Context, status TransferStatus, filter shared.Filter) ([]Transfer, error)
}

// ProductionRepository handles production run persistence. Implementations
// load and save Items together with the run.
type ProductionRepository interface {
	shared.Repository[OpenProduction]
	SaveWithLock(ctx context.Context, production *OpenProduction) error
	FindByStatus(ctx context.Context, status ProductionStatus, filter shared.Filter) ([]OpenProduction, error)
}
