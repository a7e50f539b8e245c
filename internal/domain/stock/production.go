package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// ProductionStatus is the lifecycle state of a production run
type ProductionStatus string

const (
	ProductionStatusPending   ProductionStatus = "PENDING"
	ProductionStatusCompleted ProductionStatus = "COMPLETED"
	ProductionStatusCancelled ProductionStatus = "CANCELLED"
)

// ProductionItem is one raw material consumed by a production run.
// UnitCost and TotalCost are captured at completion time from the
// consumption warehouse's average cost.
type ProductionItem struct {
	shared.BaseEntity
	ProductionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	RawMaterialID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
}

// TableName returns the database table name
func (ProductionItem) TableName() string {
	return "production_items"
}

// OpenProduction is a production run that turns raw materials into a
// finished good. Completion realizes one PRODUCTION_IN entry for the
// produced material at the production warehouse and one PRODUCTION_OUT entry
// per item at the consumption warehouse, atomically. The run is editable
// only while PENDING.
type OpenProduction struct {
	shared.BaseAggregateRoot
	ProducedMaterialID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProducedQuantity       decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	ProductionWarehouseID  uuid.UUID        `gorm:"type:uuid;not null"`
	ConsumptionWarehouseID uuid.UUID        `gorm:"type:uuid;not null"`
	Status                 ProductionStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ProductionDate         time.Time        `gorm:"not null"`
	CompletedAt            *time.Time
	TotalCost              decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	Items                  []ProductionItem `gorm:"foreignKey:ProductionID"`
}

// TableName returns the database table name
func (OpenProduction) TableName() string {
	return "open_productions"
}

// NewOpenProduction creates a pending production run. Quantities are in
// canonical units.
func NewOpenProduction(producedMaterialID uuid.UUID, producedQuantity decimal.Decimal, productionWarehouseID, consumptionWarehouseID uuid.UUID, productionDate time.Time) (*OpenProduction, error) {
	if producedMaterialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Produced material is required")
	}
	if productionWarehouseID == uuid.Nil || consumptionWarehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Production and consumption warehouses are required")
	}
	if !producedQuantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	if productionDate.IsZero() {
		productionDate = time.Now()
	}

	return &OpenProduction{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		ProducedMaterialID:     producedMaterialID,
		ProducedQuantity:       producedQuantity,
		ProductionWarehouseID:  productionWarehouseID,
		ConsumptionWarehouseID: consumptionWarehouseID,
		Status:                 ProductionStatusPending,
		ProductionDate:         productionDate,
		TotalCost:              decimal.Zero,
		Items:                  make([]ProductionItem, 0),
	}, nil
}

// AddItem adds a raw material to consume. Only allowed while PENDING.
func (p *OpenProduction) AddItem(rawMaterialID uuid.UUID, quantity decimal.Decimal) error {
	if p.Status != ProductionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Production run is no longer editable")
	}
	if rawMaterialID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Raw material is required")
	}
	if !quantity.IsPositive() {
		return shared.ErrInvalidQuantity
	}
	if rawMaterialID == p.ProducedMaterialID {
		return shared.NewDomainError("INVALID_INPUT", "A production run cannot consume its own output")
	}
	p.Items = append(p.Items, ProductionItem{
		BaseEntity:    shared.NewBaseEntity(),
		ProductionID:  p.ID,
		RawMaterialID: rawMaterialID,
		Quantity:      quantity,
	})
	return nil
}

// RemoveItem drops a raw material from the run. Only allowed while PENDING.
func (p *OpenProduction) RemoveItem(itemID uuid.UUID) error {
	if p.Status != ProductionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Production run is no longer editable")
	}
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			p.Items = append(p.Items[:i], p.Items[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// Complete marks the run as realized. itemCosts maps raw material ID to the
// per-unit cost basis captured from the consumption warehouse at completion
// time; TotalCost becomes the sum over items of quantity times unit cost.
func (p *OpenProduction) Complete(itemCosts map[uuid.UUID]decimal.Decimal, completedAt time.Time) error {
	if p.Status != ProductionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending production runs can be completed")
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Production run has no items to consume")
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	total := decimal.Zero
	for i := range p.Items {
		item := &p.Items[i]
		cost, ok := itemCosts[item.RawMaterialID]
		if !ok {
			return shared.NewDomainError("INVALID_INPUT", "Missing cost basis for raw material "+item.RawMaterialID.String())
		}
		item.UnitCost = cost.Round(costPrecision)
		item.TotalCost = item.Quantity.Mul(cost).Round(costPrecision)
		total = total.Add(item.TotalCost)
	}

	p.Status = ProductionStatusCompleted
	p.CompletedAt = &completedAt
	p.TotalCost = total
	p.AddDomainEvent(NewProductionCompletedEvent(p))
	return nil
}

// Cancel marks the run as abandoned; no stock entries are realized
func (p *OpenProduction) Cancel() error {
	if p.Status != ProductionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending production runs can be cancelled")
	}
	p.Status = ProductionStatusCancelled
	return nil
}

// OutputUnitCost derives the produced material's per-unit cost from the
// consumed total
func (p *OpenProduction) OutputUnitCost() decimal.Decimal {
	if !p.ProducedQuantity.IsPositive() {
		return decimal.Zero
	}
	return p.TotalCost.DivRound(p.ProducedQuantity, costPrecision)
}
