package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// Material is a purchasable/consumable item. All materialized stock for a
// material is kept in its consumption unit; ConversionFactor is the size of
// one purchase unit in consumption units and is fixed per material.
// AverageCost is the weighted-average unit cost per consumption unit across
// all warehouses, maintained as a projection like warehouse stock is.
type Material struct {
	shared.BaseAggregateRoot
	Name             string           `gorm:"type:varchar(200);not null"`
	CategoryID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	PurchaseUnit     string           `gorm:"type:varchar(20);not null"`
	ConsumptionUnit  string           `gorm:"type:varchar(20);not null"`
	ConversionFactor decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:1"`
	AverageCost      decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	DefaultTaxRate   *decimal.Decimal `gorm:"type:decimal(10,4)"`
	MinimumStock     decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	IsActive         bool             `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new material
func NewMaterial(name string, categoryID uuid.UUID, purchaseUnit, consumptionUnit string, conversionFactor decimal.Decimal) (*Material, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Material name is required")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Category is required")
	}
	if purchaseUnit == "" || consumptionUnit == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase and consumption units are required")
	}
	if !conversionFactor.IsPositive() {
		return nil, shared.ErrInvalidConversion
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CategoryID:        categoryID,
		PurchaseUnit:      purchaseUnit,
		ConsumptionUnit:   consumptionUnit,
		ConversionFactor:  conversionFactor,
		AverageCost:       decimal.Zero,
		MinimumStock:      decimal.Zero,
		IsActive:          true,
	}, nil
}

// ToCanonical converts a quantity in the given unit into consumption units
func (m *Material) ToCanonical(quantity decimal.Decimal, sourceUnit UnitTag) (decimal.Decimal, error) {
	return ToCanonical(m.ConversionFactor, quantity, sourceUnit)
}

// UnitCostToCanonical converts a unit cost quoted in the given unit into a
// per-consumption-unit cost
func (m *Material) UnitCostToCanonical(unitCost decimal.Decimal, sourceUnit UnitTag) (decimal.Decimal, error) {
	return UnitCostToCanonical(m.ConversionFactor, unitCost, sourceUnit)
}

// TaxRateOr returns the material's tax rate, falling back to the supplied
// configured default when none is set
func (m *Material) TaxRateOr(fallback decimal.Decimal) decimal.Decimal {
	if m.DefaultTaxRate != nil {
		return *m.DefaultTaxRate
	}
	return fallback
}

// SetAverageCost overwrites the cross-warehouse average cost projection
func (m *Material) SetAverageCost(cost decimal.Decimal) {
	if cost.IsNegative() {
		cost = decimal.Zero
	}
	m.AverageCost = cost.Round(costPrecision)
}

// SetDefaultTaxRate configures the material-level VAT rate
func (m *Material) SetDefaultTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Tax rate cannot be negative")
	}
	m.DefaultTaxRate = &rate
	return nil
}

// SetMinimumStock configures the low-stock threshold in canonical units
func (m *Material) SetMinimumStock(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Minimum stock cannot be negative")
	}
	m.MinimumStock = quantity
	return nil
}

// Deactivate soft-deletes the material
func (m *Material) Deactivate() {
	m.IsActive = false
}
