package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// WarehouseStock is the materialized projection for one (material, warehouse)
// key. CurrentStock and AverageCost are derived from the append-only stock
// entry log; Apply is the only incremental mutation path and Rebuild the only
// wholesale one. Invariant: ReservedStock never exceeds CurrentStock, so
// AvailableStock is never negative.
type WarehouseStock struct {
	shared.BaseAggregateRoot
	MaterialID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_warehouse_stocks_key,priority:1"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_warehouse_stocks_key,priority:2"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	ReservedStock decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	MinimumStock  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	AverageCost   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Location      string          `gorm:"type:varchar(100)"`
}

// TableName returns the database table name
func (WarehouseStock) TableName() string {
	return "warehouse_stocks"
}

// NewWarehouseStock creates an empty stock row for a (material, warehouse) key
func NewWarehouseStock(materialID, warehouseID uuid.UUID) (*WarehouseStock, error) {
	if materialID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Material and warehouse are required")
	}
	return &WarehouseStock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MaterialID:        materialID,
		WarehouseID:       warehouseID,
		CurrentStock:      decimal.Zero,
		ReservedStock:     decimal.Zero,
		MinimumStock:      decimal.Zero,
		AverageCost:       decimal.Zero,
	}, nil
}

// AvailableStock is the quantity not held by reservations
func (s *WarehouseStock) AvailableStock() decimal.Decimal {
	return s.CurrentStock.Sub(s.ReservedStock)
}

// IsLowStock reports whether the stock fell below its threshold
func (s *WarehouseStock) IsLowStock() bool {
	return s.CurrentStock.LessThan(s.MinimumStock)
}

// Apply folds one stock entry into the projection and stamps the entry with
// its balance transition. Inbound entries add quantity and re-blend the
// average cost. Outbound entries must not exceed AvailableStock; a violation
// returns InsufficientStockError and leaves both the projection and the
// entry untouched. Outbound cost basis is the average cost at application
// time. Persisting the updated row and appending the entry must share one
// transaction; callers own that boundary.
func (s *WarehouseStock) Apply(entry *StockEntry) error {
	if entry == nil || entry.MaterialID != s.MaterialID || entry.WarehouseID != s.WarehouseID {
		return shared.NewDomainError("INVALID_INPUT", "Entry does not belong to this stock record")
	}
	if !entry.Kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid stock entry kind: "+string(entry.Kind))
	}

	before := s.CurrentStock

	if entry.Kind.IsInbound() {
		s.AverageCost = WeightedAverage(s.CurrentStock, s.AverageCost, entry.Quantity, entry.UnitCost)
		s.CurrentStock = s.CurrentStock.Add(entry.Quantity)
	} else {
		available := s.AvailableStock()
		if entry.Quantity.GreaterThan(available) {
			return shared.ErrInsufficientStock.WithDetails(map[string]any{
				"material_id":  s.MaterialID.String(),
				"warehouse_id": s.WarehouseID.String(),
				"requested":    entry.Quantity.String(),
				"available":    available.String(),
			})
		}
		entry.UnitCost = s.AverageCost
		entry.TotalCost = entry.Quantity.Mul(s.AverageCost).Round(costPrecision)
		s.CurrentStock = s.CurrentStock.Sub(entry.Quantity)
	}

	entry.BalanceBefore = before
	entry.BalanceAfter = s.CurrentStock

	s.AddDomainEvent(NewStockEntryAppliedEvent(s, entry))
	return nil
}

// Reserve holds quantity against future consumption
func (s *WarehouseStock) Reserve(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(s.AvailableStock()) {
		return shared.ErrInsufficientStock.WithDetails(map[string]any{
			"requested": quantity.String(),
			"available": s.AvailableStock().String(),
		})
	}
	s.ReservedStock = s.ReservedStock.Add(quantity)
	return nil
}

// ReleaseReservation frees previously reserved quantity
func (s *WarehouseStock) ReleaseReservation(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(s.ReservedStock) {
		return shared.NewDomainError("INVALID_INPUT", "Cannot release more than reserved")
	}
	s.ReservedStock = s.ReservedStock.Sub(quantity)
	return nil
}

// Rebuild overwrites the projection with a replayed snapshot. Reservations
// are operational state, not ledger state, and are preserved as-is (capped
// to the rebuilt quantity to keep the availability invariant).
func (s *WarehouseStock) Rebuild(snapshot Snapshot) {
	s.CurrentStock = snapshot.Quantity
	s.AverageCost = snapshot.AverageCost
	if s.ReservedStock.GreaterThan(s.CurrentStock) {
		s.ReservedStock = s.CurrentStock
	}
	s.AddDomainEvent(NewStockRecalculatedEvent(s))
}

// SetMinimumStock configures the low-stock threshold for this warehouse
func (s *WarehouseStock) SetMinimumStock(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Minimum stock cannot be negative")
	}
	s.MinimumStock = quantity
	return nil
}
