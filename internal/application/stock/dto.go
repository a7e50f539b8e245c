package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/stock"
)

// PurchaseInput records an inbound purchase. Quantity and UnitCost are in
// the given unit ("purchase" or "consumption"); the service converts both to
// canonical consumption units before touching the ledger.
type PurchaseInput struct {
	MaterialID  uuid.UUID
	WarehouseID uuid.UUID
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Unit        stock.UnitTag
	OccurredAt  time.Time
	Note        string
}

// AdjustmentInput records a manual stock correction. Increase selects
// ADJUSTMENT_IN vs ADJUSTMENT_OUT; UnitCost is only consulted for increases.
type AdjustmentInput struct {
	MaterialID  uuid.UUID
	WarehouseID uuid.UUID
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Increase    bool
	OccurredAt  time.Time
	Note        string
}

// ReturnInput records goods sent back to a supplier
type ReturnInput struct {
	MaterialID  uuid.UUID
	WarehouseID uuid.UUID
	Quantity    decimal.Decimal
	OccurredAt  time.Time
	Note        string
}

// StockEntryDTO is the API representation of a stock ledger entry
type StockEntryDTO struct {
	ID            uuid.UUID       `json:"id"`
	MaterialID    uuid.UUID       `json:"material_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	Kind          string          `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceType    string          `json:"source_type,omitempty"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	Note          string          `json:"note,omitempty"`
}

// WarehouseStockDTO is the API representation of a stock projection
type WarehouseStockDTO struct {
	ID             uuid.UUID       `json:"id"`
	MaterialID     uuid.UUID       `json:"material_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	ReservedStock  decimal.Decimal `json:"reserved_stock"`
	AvailableStock decimal.Decimal `json:"available_stock"`
	MinimumStock   decimal.Decimal `json:"minimum_stock"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	StockValue     decimal.Decimal `json:"stock_value"`
	LowStock       bool            `json:"low_stock"`
	Location       string          `json:"location,omitempty"`
}

// SnapshotDTO is a historical reconstruction of one stock key
type SnapshotDTO struct {
	MaterialID  uuid.UUID       `json:"material_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	AsOf        time.Time       `json:"as_of"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	StockValue  decimal.Decimal `json:"stock_value"`
}

// UtilizationDTO reports a warehouse's fill level
type UtilizationDTO struct {
	WarehouseID        uuid.UUID       `json:"warehouse_id"`
	TotalStock         decimal.Decimal `json:"total_stock"`
	Capacity           decimal.Decimal `json:"capacity"`
	UtilizationPercent decimal.Decimal `json:"utilization_percent"`
}

// ToStockEntryDTO maps a domain entry to its API representation
func ToStockEntryDTO(entry *stock.StockEntry) *StockEntryDTO {
	return &StockEntryDTO{
		ID:            entry.ID,
		MaterialID:    entry.MaterialID,
		WarehouseID:   entry.WarehouseID,
		Kind:          string(entry.Kind),
		Quantity:      entry.Quantity,
		UnitCost:      entry.UnitCost,
		TotalCost:     entry.TotalCost,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		OccurredAt:    entry.OccurredAt,
		SourceType:    string(entry.SourceType),
		SourceID:      entry.SourceID,
		Note:          entry.Note,
	}
}

// ToWarehouseStockDTO maps a stock projection to its API representation
func ToWarehouseStockDTO(s *stock.WarehouseStock) *WarehouseStockDTO {
	return &WarehouseStockDTO{
		ID:             s.ID,
		MaterialID:     s.MaterialID,
		WarehouseID:    s.WarehouseID,
		CurrentStock:   s.CurrentStock,
		ReservedStock:  s.ReservedStock,
		AvailableStock: s.AvailableStock(),
		MinimumStock:   s.MinimumStock,
		AverageCost:    s.AverageCost,
		StockValue:     s.CurrentStock.Mul(s.AverageCost).Round(4),
		LowStock:       s.IsLowStock(),
		Location:       s.Location,
	}
}
