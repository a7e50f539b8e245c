package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// StockEntryKind classifies a stock ledger entry. Quantity is always a
// positive magnitude; the direction is implied by the kind.
type StockEntryKind string

const (
	StockEntryPurchaseIn    StockEntryKind = "PURCHASE_IN"
	StockEntryTransferIn    StockEntryKind = "TRANSFER_IN"
	StockEntryTransferOut   StockEntryKind = "TRANSFER_OUT"
	StockEntryProductionIn  StockEntryKind = "PRODUCTION_IN"
	StockEntryProductionOut StockEntryKind = "PRODUCTION_OUT"
	StockEntryAdjustmentIn  StockEntryKind = "ADJUSTMENT_IN"
	StockEntryAdjustmentOut StockEntryKind = "ADJUSTMENT_OUT"
	StockEntryReturnOut     StockEntryKind = "RETURN_OUT"
)

// IsValid checks if the stock entry kind is valid
func (k StockEntryKind) IsValid() bool {
	switch k {
	case StockEntryPurchaseIn, StockEntryTransferIn, StockEntryTransferOut,
		StockEntryProductionIn, StockEntryProductionOut,
		StockEntryAdjustmentIn, StockEntryAdjustmentOut, StockEntryReturnOut:
		return true
	}
	return false
}

// IsInbound reports whether the kind increases stock
func (k StockEntryKind) IsInbound() bool {
	switch k {
	case StockEntryPurchaseIn, StockEntryTransferIn, StockEntryProductionIn, StockEntryAdjustmentIn:
		return true
	}
	return false
}

// IsOutbound reports whether the kind decreases stock
func (k StockEntryKind) IsOutbound() bool {
	return k.IsValid() && !k.IsInbound()
}

// SourceType identifies the business document that produced a stock entry
type SourceType string

const (
	SourceTypePurchase   SourceType = "PURCHASE"
	SourceTypeTransfer   SourceType = "TRANSFER"
	SourceTypeProduction SourceType = "PRODUCTION"
	SourceTypeAdjustment SourceType = "ADJUSTMENT"
	SourceTypeReturn     SourceType = "RETURN"
)

// StockEntry is an immutable, append-only stock ledger record for one
// (material, warehouse) key. Quantity and UnitCost are in canonical
// (consumption) units; UnitCost is the cost basis captured at event time and
// is never recomputed afterwards. Ordering key: (OccurredAt, Sequence).
type StockEntry struct {
	shared.BaseEntity
	MaterialID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_entries_key_date,priority:1"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_entries_key_date,priority:2"`
	Kind          StockEntryKind  `gorm:"type:varchar(20);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	OccurredAt    time.Time       `gorm:"not null;index:idx_stock_entries_key_date,priority:3"`
	Sequence      int64           `gorm:"autoIncrement;uniqueIndex"`
	SourceType    SourceType      `gorm:"type:varchar(20)"`
	SourceID      *uuid.UUID      `gorm:"type:uuid;index"`
	Note          string          `gorm:"type:varchar(500)"`
}

// TableName returns the database table name
func (StockEntry) TableName() string {
	return "stock_entries"
}

// NewStockEntry creates a stock ledger entry. Quantity must be a positive
// canonical-unit magnitude. For inbound kinds the caller supplies the unit
// cost; for outbound kinds the cost basis is stamped by WarehouseStock.Apply
// from the average cost at application time.
func NewStockEntry(materialID, warehouseID uuid.UUID, kind StockEntryKind, quantity, unitCost decimal.Decimal, occurredAt time.Time) (*StockEntry, error) {
	if materialID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Material and warehouse are required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid stock entry kind: "+string(kind))
	}
	if !quantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit cost cannot be negative")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &StockEntry{
		BaseEntity:  shared.NewBaseEntity(),
		MaterialID:  materialID,
		WarehouseID: warehouseID,
		Kind:        kind,
		Quantity:    quantity,
		UnitCost:    unitCost.Round(costPrecision),
		TotalCost:   quantity.Mul(unitCost).Round(costPrecision),
		OccurredAt:  occurredAt,
	}, nil
}

// WithSource links the entry to the business document that produced it
func (e *StockEntry) WithSource(sourceType SourceType, sourceID uuid.UUID) *StockEntry {
	e.SourceType = sourceType
	e.SourceID = &sourceID
	return e
}

// WithNote attaches a free-form note
func (e *StockEntry) WithNote(note string) *StockEntry {
	e.Note = note
	return e
}

// SignedQuantity returns the quantity with direction applied
func (e *StockEntry) SignedQuantity() decimal.Decimal {
	if e.Kind.IsOutbound() {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
