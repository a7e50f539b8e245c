package stock

import (
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// Warehouse is a physical storage location
type Warehouse struct {
	shared.BaseAggregateRoot
	Name     string          `gorm:"type:varchar(200);not null"`
	Location string          `gorm:"type:varchar(200)"`
	Capacity decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	IsActive bool            `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse. Capacity is in canonical units;
// zero means uncapped.
func NewWarehouse(name, location string, capacity decimal.Decimal) (*Warehouse, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse name is required")
	}
	if capacity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Capacity cannot be negative")
	}
	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Location:          location,
		Capacity:          capacity,
		IsActive:          true,
	}, nil
}

// UtilizationPercent derives the fill level from the warehouse's total
// stored quantity. Returns zero for uncapped warehouses.
func (w *Warehouse) UtilizationPercent(totalStock decimal.Decimal) decimal.Decimal {
	if !w.Capacity.IsPositive() {
		return decimal.Zero
	}
	return totalStock.Mul(decimal.NewFromInt(100)).DivRound(w.Capacity, 2)
}

// Deactivate soft-deletes the warehouse
func (w *Warehouse) Deactivate() {
	w.IsActive = false
}
