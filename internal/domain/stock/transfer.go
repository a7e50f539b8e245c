package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// TransferStatus is the lifecycle state of a transfer request
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further transitions
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusCancelled
}

// Transfer moves material between two warehouses. While PENDING it is just a
// request; completion realizes exactly one TRANSFER_OUT entry at the source
// and one TRANSFER_IN entry at the destination, atomically, both costed at
// the source's average cost at completion time.
type Transfer struct {
	shared.BaseAggregateRoot
	FromWarehouseID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ToWarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Status          TransferStatus  `gorm:"type:varchar(20);not null;default:'PENDING'"`
	RequestDate     time.Time       `gorm:"not null"`
	CompletedAt     *time.Time
	Reason          string          `gorm:"type:varchar(500)"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
}

// TableName returns the database table name
func (Transfer) TableName() string {
	return "transfers"
}

// NewTransfer creates a pending transfer request. Quantity is in canonical
// units.
func NewTransfer(fromWarehouseID, toWarehouseID, materialID uuid.UUID, quantity decimal.Decimal, reason string, requestDate time.Time) (*Transfer, error) {
	if fromWarehouseID == uuid.Nil || toWarehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source and destination warehouses are required")
	}
	if fromWarehouseID == toWarehouseID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source and destination warehouses must differ")
	}
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Material is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	if requestDate.IsZero() {
		requestDate = time.Now()
	}

	transfer := &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FromWarehouseID:   fromWarehouseID,
		ToWarehouseID:     toWarehouseID,
		MaterialID:        materialID,
		Quantity:          quantity,
		Status:            TransferStatusPending,
		RequestDate:       requestDate,
		Reason:            reason,
		UnitCost:          decimal.Zero,
		TotalCost:         decimal.Zero,
	}
	transfer.AddDomainEvent(NewTransferRequestedEvent(transfer))
	return transfer, nil
}

// Complete marks the transfer as realized and records the cost basis
// captured from the source warehouse's average cost.
func (t *Transfer) Complete(unitCost decimal.Decimal, completedAt time.Time) error {
	if t.Status != TransferStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transfers can be completed")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit cost cannot be negative")
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	t.Status = TransferStatusCompleted
	t.CompletedAt = &completedAt
	t.UnitCost = unitCost.Round(costPrecision)
	t.TotalCost = t.Quantity.Mul(unitCost).Round(costPrecision)
	t.AddDomainEvent(NewTransferCompletedEvent(t))
	return nil
}

// Cancel marks the transfer as abandoned; no stock entries are realized
func (t *Transfer) Cancel() error {
	if t.Status != TransferStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transfers can be cancelled")
	}
	t.Status = TransferStatusCancelled
	return nil
}
