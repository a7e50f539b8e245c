package stock

import (
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// UnitTag identifies which of a material's two units a quantity is
// expressed in.
type UnitTag string

const (
	UnitPurchase    UnitTag = "purchase"
	UnitConsumption UnitTag = "consumption"
)

// IsValid checks if the unit tag is valid
func (u UnitTag) IsValid() bool {
	return u == UnitPurchase || u == UnitConsumption
}

// ToCanonical converts a quantity into the ledger's canonical unit, which is
// the material's consumption unit. The factor is the size of one purchase
// unit expressed in consumption units (kg to g means factor 1000); a factor
// of 1 means the two units coincide. Pure function, no side effects.
func ToCanonical(conversionFactor, quantity decimal.Decimal, sourceUnit UnitTag) (decimal.Decimal, error) {
	if !sourceUnit.IsValid() {
		return decimal.Zero, shared.NewDomainError("INVALID_CONVERSION", "Unknown source unit: "+string(sourceUnit))
	}
	if sourceUnit == UnitConsumption {
		return quantity, nil
	}
	if !conversionFactor.IsPositive() {
		return decimal.Zero, shared.ErrInvalidConversion
	}
	return quantity.Mul(conversionFactor), nil
}

// FromCanonical converts a canonical quantity back into purchase units,
// used for display and purchase-order rounding only.
func FromCanonical(conversionFactor, quantity decimal.Decimal) (decimal.Decimal, error) {
	if !conversionFactor.IsPositive() {
		return decimal.Zero, shared.ErrInvalidConversion
	}
	return quantity.DivRound(conversionFactor, 4), nil
}

// UnitCostToCanonical converts a unit cost quoted per purchase unit into a
// cost per canonical unit. Buying at 50 per kg with factor 1000 yields
// 0.05 per g.
func UnitCostToCanonical(conversionFactor, unitCost decimal.Decimal, sourceUnit UnitTag) (decimal.Decimal, error) {
	if !sourceUnit.IsValid() {
		return decimal.Zero, shared.NewDomainError("INVALID_CONVERSION", "Unknown source unit: "+string(sourceUnit))
	}
	if sourceUnit == UnitConsumption {
		return unitCost, nil
	}
	if !conversionFactor.IsPositive() {
		return decimal.Zero, shared.ErrInvalidConversion
	}
	return unitCost.DivRound(conversionFactor, 4), nil
}
