package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

// ProductionItemInput is one raw material line of a production run
type ProductionItemInput struct {
	RawMaterialID uuid.UUID
	Quantity      decimal.Decimal
}

// ProductionInput creates a production run
type ProductionInput struct {
	ProducedMaterialID     uuid.UUID
	ProducedQuantity       decimal.Decimal
	ProductionWarehouseID  uuid.UUID
	ConsumptionWarehouseID uuid.UUID
	Items                  []ProductionItemInput
	ProductionDate         time.Time
}

// ProductionItemDTO is the API representation of a production item
type ProductionItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	RawMaterialID uuid.UUID       `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// ProductionDTO is the API representation of a production run
type ProductionDTO struct {
	ID                     uuid.UUID           `json:"id"`
	ProducedMaterialID     uuid.UUID           `json:"produced_material_id"`
	ProducedQuantity       decimal.Decimal     `json:"produced_quantity"`
	ProductionWarehouseID  uuid.UUID           `json:"production_warehouse_id"`
	ConsumptionWarehouseID uuid.UUID           `json:"consumption_warehouse_id"`
	Status                 string              `json:"status"`
	ProductionDate         time.Time           `json:"production_date"`
	CompletedAt            *time.Time          `json:"completed_at,omitempty"`
	TotalCost              decimal.Decimal     `json:"total_cost"`
	Items                  []ProductionItemDTO `json:"items"`
}

// ToProductionDTO maps a domain production run to its API representation
func ToProductionDTO(p *stock.OpenProduction) *ProductionDTO {
	items := make([]ProductionItemDTO, 0, len(p.Items))
	for i := range p.Items {
		item := &p.Items[i]
		items = append(items, ProductionItemDTO{
			ID:            item.ID,
			RawMaterialID: item.RawMaterialID,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitCost,
			TotalCost:     item.TotalCost,
		})
	}
	return &ProductionDTO{
		ID:                     p.ID,
		ProducedMaterialID:     p.ProducedMaterialID,
		ProducedQuantity:       p.ProducedQuantity,
		ProductionWarehouseID:  p.ProductionWarehouseID,
		ConsumptionWarehouseID: p.ConsumptionWarehouseID,
		Status:                 string(p.Status),
		ProductionDate:         p.ProductionDate,
		CompletedAt:            p.CompletedAt,
		TotalCost:              p.TotalCost,
		Items:                  items,
	}
}

// ProductionService handles production runs. Completion realizes one
// PRODUCTION_IN entry for the finished good and one PRODUCTION_OUT entry per
// raw material, atomically with every projection update.
type ProductionService struct {
	scope      TransactionScope
	logger     *zap.Logger
	maxRetries int
}

// NewProductionService creates a new production service
func NewProductionService(scope TransactionScope, logger *zap.Logger) *ProductionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionService{
		scope:      scope,
		logger:     logger,
		maxRetries: defaultMaxRetries,
	}
}

// Create records a pending production run with its item list
func (s *ProductionService) Create(ctx context.Context, input ProductionInput) (*ProductionDTO, error) {
	var result *ProductionDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Materials().FindByID(ctx, input.ProducedMaterialID); err != nil {
			return err
		}
		production, err := stock.NewOpenProduction(input.ProducedMaterialID, input.ProducedQuantity, input.ProductionWarehouseID, input.ConsumptionWarehouseID, input.ProductionDate)
		if err != nil {
			return err
		}
		for _, item := range input.Items {
			if _, err := repos.Materials().FindByID(ctx, item.RawMaterialID); err != nil {
				return err
			}
			if err := production.AddItem(item.RawMaterialID, item.Quantity); err != nil {
				return err
			}
		}
		if err := repos.Productions().Save(ctx, production); err != nil {
			return err
		}
		result = ToProductionDTO(production)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddItem adds a raw material line to a pending run
func (s *ProductionService) AddItem(ctx context.Context, productionID uuid.UUID, item ProductionItemInput) (*ProductionDTO, error) {
	var result *ProductionDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			production, err := repos.Productions().FindByID(ctx, productionID)
			if err != nil {
				return err
			}
			if _, err := repos.Materials().FindByID(ctx, item.RawMaterialID); err != nil {
				return err
			}
			if err := production.AddItem(item.RawMaterialID, item.Quantity); err != nil {
				return err
			}
			if err := repos.Productions().SaveWithLock(ctx, production); err != nil {
				return err
			}
			result = ToProductionDTO(production)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem drops a raw material line from a pending run
func (s *ProductionService) RemoveItem(ctx context.Context, productionID, itemID uuid.UUID) (*ProductionDTO, error) {
	var result *ProductionDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			production, err := repos.Productions().FindByID(ctx, productionID)
			if err != nil {
				return err
			}
			if err := production.RemoveItem(itemID); err != nil {
				return err
			}
			if err := repos.Productions().SaveWithLock(ctx, production); err != nil {
				return err
			}
			result = ToProductionDTO(production)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Complete realizes a pending run. Each raw material is consumed from the
// consumption warehouse at its average cost there; the finished good arrives
// at the production warehouse costed at consumed-total divided by produced
// quantity. All entries and projection updates commit together.
func (s *ProductionService) Complete(ctx context.Context, productionID uuid.UUID) (*ProductionDTO, error) {
	var result *ProductionDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			production, err := repos.Productions().FindByID(ctx, productionID)
			if err != nil {
				return err
			}
			if production.Status != stock.ProductionStatusPending {
				return shared.NewDomainError("INVALID_STATE", "Only pending production runs can be completed")
			}

			completedAt := time.Now()

			// Capture each raw material's cost basis from the consumption
			// warehouse before anything is applied.
			consumptionStocks := make(map[uuid.UUID]*stock.WarehouseStock, len(production.Items))
			itemCosts := make(map[uuid.UUID]decimal.Decimal, len(production.Items))
			for i := range production.Items {
				item := &production.Items[i]
				row, err := repos.Stocks().FindByKey(ctx, item.RawMaterialID, production.ConsumptionWarehouseID)
				if err != nil {
					return err
				}
				consumptionStocks[item.RawMaterialID] = row
				itemCosts[item.RawMaterialID] = row.AverageCost
			}

			if err := production.Complete(itemCosts, completedAt); err != nil {
				return err
			}

			entries := make([]*stock.StockEntry, 0, len(production.Items)+1)
			for i := range production.Items {
				item := &production.Items[i]
				out, err := stock.NewStockEntry(item.RawMaterialID, production.ConsumptionWarehouseID, stock.StockEntryProductionOut, item.Quantity, item.UnitCost, completedAt)
				if err != nil {
					return err
				}
				out.WithSource(stock.SourceTypeProduction, production.ID)
				if err := consumptionStocks[item.RawMaterialID].Apply(out); err != nil {
					return err
				}
				entries = append(entries, out)
			}

			producedMaterial, err := repos.Materials().FindByID(ctx, production.ProducedMaterialID)
			if err != nil {
				return err
			}
			outputStock, outputCreated, err := findOrCreateStock(ctx, repos, producedMaterial, production.ProductionWarehouseID)
			if err != nil {
				return err
			}
			in, err := stock.NewStockEntry(production.ProducedMaterialID, production.ProductionWarehouseID, stock.StockEntryProductionIn, production.ProducedQuantity, production.OutputUnitCost(), completedAt)
			if err != nil {
				return err
			}
			in.WithSource(stock.SourceTypeProduction, production.ID)
			if err := outputStock.Apply(in); err != nil {
				return err
			}
			entries = append(entries, in)

			if err := repos.Entries().AppendAll(ctx, entries); err != nil {
				return err
			}
			for _, row := range consumptionStocks {
				if err := repos.Stocks().SaveWithLock(ctx, row); err != nil {
					return err
				}
			}
			if outputCreated {
				if err := repos.Stocks().Save(ctx, outputStock); err != nil {
					return err
				}
			} else if err := repos.Stocks().SaveWithLock(ctx, outputStock); err != nil {
				return err
			}
			if err := repos.Productions().SaveWithLock(ctx, production); err != nil {
				return err
			}

			// The finished good's material average moves with the new batch.
			avg, err := repos.Stocks().WeightedAverageCost(ctx, production.ProducedMaterialID)
			if err != nil {
				return err
			}
			producedMaterial.SetAverageCost(avg)
			if err := repos.Materials().SaveWithLock(ctx, producedMaterial); err != nil {
				return err
			}

			result = ToProductionDTO(production)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("production completed",
		zap.String("production_id", productionID.String()),
		zap.String("total_cost", result.TotalCost.String()),
		zap.Int("items", len(result.Items)),
	)
	return result, nil
}

// Cancel abandons a pending run without realizing any stock entries
func (s *ProductionService) Cancel(ctx context.Context, productionID uuid.UUID) (*ProductionDTO, error) {
	var result *ProductionDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			production, err := repos.Productions().FindByID(ctx, productionID)
			if err != nil {
				return err
			}
			if err := production.Cancel(); err != nil {
				return err
			}
			if err := repos.Productions().SaveWithLock(ctx, production); err != nil {
				return err
			}
			result = ToProductionDTO(production)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a production run; only pending runs can be deleted
func (s *ProductionService) Delete(ctx context.Context, productionID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		production, err := repos.Productions().FindByID(ctx, productionID)
		if err != nil {
			return err
		}
		if production.Status != stock.ProductionStatusPending {
			return shared.NewDomainError("INVALID_STATE", "Only pending production runs can be deleted")
		}
		return repos.Productions().Delete(ctx, productionID)
	})
}

// Get returns one production run
func (s *ProductionService) Get(ctx context.Context, productionID uuid.UUID) (*ProductionDTO, error) {
	var result *ProductionDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		production, err := repos.Productions().FindByID(ctx, productionID)
		if err != nil {
			return err
		}
		result = ToProductionDTO(production)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns production runs matching the filter
func (s *ProductionService) List(ctx context.Context, filter shared.Filter) ([]ProductionDTO, error) {
	var result []ProductionDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		productions, err := repos.Productions().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		result = make([]ProductionDTO, 0, len(productions))
		for i := range productions {
			result = append(result, *ToProductionDTO(&productions[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
