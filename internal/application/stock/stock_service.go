package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

const defaultMaxRetries = 3

// StockService handles stock mutations and queries. Every mutation runs the
// read-validate-write sequence inside one transaction scope, retried a
// bounded number of times on optimistic-lock conflicts.
type StockService struct {
	scope      TransactionScope
	warehouses stock.WarehouseRepository
	logger     *zap.Logger
	maxRetries int
}

// NewStockService creates a new stock service
func NewStockService(scope TransactionScope, warehouses stock.WarehouseRepository, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		scope:      scope,
		warehouses: warehouses,
		logger:     logger,
		maxRetries: defaultMaxRetries,
	}
}

// RecordPurchase appends a PURCHASE_IN entry and updates the projection.
// Quantity and unit cost arrive in the purchase or consumption unit and are
// converted to canonical units before anything is written.
func (s *StockService) RecordPurchase(ctx context.Context, input PurchaseInput) (*StockEntryDTO, error) {
	if !input.Unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown quantity unit: "+string(input.Unit))
	}

	var result *StockEntryDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			material, err := repos.Materials().FindByID(ctx, input.MaterialID)
			if err != nil {
				return err
			}
			quantity, err := material.ToCanonical(input.Quantity, input.Unit)
			if err != nil {
				return err
			}
			unitCost, err := material.UnitCostToCanonical(input.UnitCost, input.Unit)
			if err != nil {
				return err
			}

			row, created, err := findOrCreateStock(ctx, repos, material, input.WarehouseID)
			if err != nil {
				return err
			}

			entry, err := stock.NewStockEntry(input.MaterialID, input.WarehouseID, stock.StockEntryPurchaseIn, quantity, unitCost, input.OccurredAt)
			if err != nil {
				return err
			}
			entry.SourceType = stock.SourceTypePurchase
			entry.WithNote(input.Note)

			if err := row.Apply(entry); err != nil {
				return err
			}
			if err := repos.Entries().Append(ctx, entry); err != nil {
				return err
			}
			if err := s.saveStock(ctx, repos, row, created); err != nil {
				return err
			}
			if err := s.refreshMaterialCost(ctx, repos, material); err != nil {
				return err
			}

			result = ToStockEntryDTO(entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase recorded",
		zap.String("material_id", input.MaterialID.String()),
		zap.String("warehouse_id", input.WarehouseID.String()),
		zap.String("quantity", result.Quantity.String()),
		zap.String("unit_cost", result.UnitCost.String()),
	)
	return result, nil
}

// RecordAdjustment appends an ADJUSTMENT_IN or ADJUSTMENT_OUT entry.
// Corrections never rewrite history; they are new entries.
func (s *StockService) RecordAdjustment(ctx context.Context, input AdjustmentInput) (*StockEntryDTO, error) {
	kind := stock.StockEntryAdjustmentOut
	if input.Increase {
		kind = stock.StockEntryAdjustmentIn
	}

	var result *StockEntryDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			material, err := repos.Materials().FindByID(ctx, input.MaterialID)
			if err != nil {
				return err
			}
			row, created, err := findOrCreateStock(ctx, repos, material, input.WarehouseID)
			if err != nil {
				return err
			}

			unitCost := input.UnitCost
			if !input.Increase {
				// Outbound cost basis is stamped by Apply.
				unitCost = row.AverageCost
			}
			entry, err := stock.NewStockEntry(input.MaterialID, input.WarehouseID, kind, input.Quantity, unitCost, input.OccurredAt)
			if err != nil {
				return err
			}
			entry.SourceType = stock.SourceTypeAdjustment
			entry.WithNote(input.Note)

			if err := row.Apply(entry); err != nil {
				return err
			}
			if err := repos.Entries().Append(ctx, entry); err != nil {
				return err
			}
			if err := s.saveStock(ctx, repos, row, created); err != nil {
				return err
			}
			if err := s.refreshMaterialCost(ctx, repos, material); err != nil {
				return err
			}

			result = ToStockEntryDTO(entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordReturn appends a RETURN_OUT entry for goods sent back to a supplier
func (s *StockService) RecordReturn(ctx context.Context, input ReturnInput) (*StockEntryDTO, error) {
	var result *StockEntryDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			row, err := repos.Stocks().FindByKey(ctx, input.MaterialID, input.WarehouseID)
			if err != nil {
				return err
			}
			entry, err := stock.NewStockEntry(input.MaterialID, input.WarehouseID, stock.StockEntryReturnOut, input.Quantity, row.AverageCost, input.OccurredAt)
			if err != nil {
				return err
			}
			entry.SourceType = stock.SourceTypeReturn
			entry.WithNote(input.Note)

			if err := row.Apply(entry); err != nil {
				return err
			}
			if err := repos.Entries().Append(ctx, entry); err != nil {
				return err
			}
			if err := repos.Stocks().SaveWithLock(ctx, row); err != nil {
				return err
			}

			result = ToStockEntryDTO(entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetStock returns the current projection for one (material, warehouse) key
func (s *StockService) GetStock(ctx context.Context, materialID, warehouseID uuid.UUID) (*WarehouseStockDTO, error) {
	var result *WarehouseStockDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		row, err := repos.Stocks().FindByKey(ctx, materialID, warehouseID)
		if err != nil {
			return err
		}
		result = ToWarehouseStockDTO(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListByWarehouse returns the stock projections of one warehouse
func (s *StockService) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]WarehouseStockDTO, error) {
	var result []WarehouseStockDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, err := repos.Stocks().FindByWarehouse(ctx, warehouseID, filter)
		if err != nil {
			return err
		}
		result = make([]WarehouseStockDTO, 0, len(rows))
		for i := range rows {
			result = append(result, *ToWarehouseStockDTO(&rows[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListLowStock returns the projections that fell below their threshold
func (s *StockService) ListLowStock(ctx context.Context, warehouseID uuid.UUID) ([]WarehouseStockDTO, error) {
	var result []WarehouseStockDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, err := repos.Stocks().FindLowStock(ctx, warehouseID)
		if err != nil {
			return err
		}
		result = make([]WarehouseStockDTO, 0, len(rows))
		for i := range rows {
			result = append(result, *ToWarehouseStockDTO(&rows[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SnapshotAsOf reconstructs one key's stock at a past date by folding its
// entry history up to the cutoff. Same fold as recalculation, scoped and
// filtered.
func (s *StockService) SnapshotAsOf(ctx context.Context, materialID, warehouseID uuid.UUID, asOf time.Time) (*SnapshotDTO, error) {
	var result *SnapshotDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entries, err := repos.Entries().FindByKeyUpTo(ctx, materialID, warehouseID, asOf)
		if err != nil {
			return err
		}
		snap := stock.Replay(entries)
		result = &SnapshotDTO{
			MaterialID:  materialID,
			WarehouseID: warehouseID,
			AsOf:        asOf,
			Quantity:    snap.Quantity,
			AverageCost: snap.AverageCost,
			StockValue:  snap.Quantity.Mul(snap.AverageCost).Round(4),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetEntries returns one key's entry history in canonical order
func (s *StockService) GetEntries(ctx context.Context, materialID, warehouseID uuid.UUID) ([]StockEntryDTO, error) {
	var result []StockEntryDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entries, err := repos.Entries().FindByKey(ctx, materialID, warehouseID)
		if err != nil {
			return err
		}
		result = make([]StockEntryDTO, 0, len(entries))
		for i := range entries {
			result = append(result, *ToStockEntryDTO(&entries[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reserve holds quantity on a stock key
func (s *StockService) Reserve(ctx context.Context, materialID, warehouseID uuid.UUID, quantity decimal.Decimal) error {
	return withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			row, err := repos.Stocks().FindByKey(ctx, materialID, warehouseID)
			if err != nil {
				return err
			}
			if err := row.Reserve(quantity); err != nil {
				return err
			}
			return repos.Stocks().SaveWithLock(ctx, row)
		})
	})
}

// ReleaseReservation frees previously held quantity
func (s *StockService) ReleaseReservation(ctx context.Context, materialID, warehouseID uuid.UUID, quantity decimal.Decimal) error {
	return withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			row, err := repos.Stocks().FindByKey(ctx, materialID, warehouseID)
			if err != nil {
				return err
			}
			if err := row.ReleaseReservation(quantity); err != nil {
				return err
			}
			return repos.Stocks().SaveWithLock(ctx, row)
		})
	})
}

// GetUtilization derives a warehouse's fill level from its total stock
func (s *StockService) GetUtilization(ctx context.Context, warehouseID uuid.UUID) (*UtilizationDTO, error) {
	warehouse, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	var result *UtilizationDTO
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		total, err := repos.Stocks().TotalQuantity(ctx, warehouseID)
		if err != nil {
			return err
		}
		result = &UtilizationDTO{
			WarehouseID:        warehouseID,
			TotalStock:         total,
			Capacity:           warehouse.Capacity,
			UtilizationPercent: warehouse.UtilizationPercent(total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findOrCreateStock loads the projection for a key, creating an empty row
// seeded with the material's low-stock threshold when none exists yet.
func findOrCreateStock(ctx context.Context, repos TransactionalRepositories, material *stock.Material, warehouseID uuid.UUID) (*stock.WarehouseStock, bool, error) {
	row, err := repos.Stocks().FindByKey(ctx, material.ID, warehouseID)
	if err == nil {
		return row, false, nil
	}
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != shared.ErrNotFound.Code {
		return nil, false, err
	}

	row, err = stock.NewWarehouseStock(material.ID, warehouseID)
	if err != nil {
		return nil, false, err
	}
	if err := row.SetMinimumStock(material.MinimumStock); err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// saveStock inserts new rows and lock-saves existing ones
func (s *StockService) saveStock(ctx context.Context, repos TransactionalRepositories, row *stock.WarehouseStock, created bool) error {
	if created {
		return repos.Stocks().Save(ctx, row)
	}
	return repos.Stocks().SaveWithLock(ctx, row)
}

// refreshMaterialCost rewrites the material-level average cost projection
// as the quantity-weighted mean over all warehouses holding the material.
func (s *StockService) refreshMaterialCost(ctx context.Context, repos TransactionalRepositories, material *stock.Material) error {
	avg, err := repos.Stocks().WeightedAverageCost(ctx, material.ID)
	if err != nil {
		return err
	}
	material.SetAverageCost(avg)
	return repos.Materials().SaveWithLock(ctx, material)
}
