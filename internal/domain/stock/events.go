package stock

import (
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/shared"
)

// Event types for the stock ledger
const (
	EventTypeStockEntryApplied   = "stock.entry.applied"
	EventTypeStockRecalculated   = "stock.recalculated"
	EventTypeTransferRequested   = "stock.transfer.requested"
	EventTypeTransferCompleted   = "stock.transfer.completed"
	EventTypeProductionCompleted = "stock.production.completed"
)

// StockEntryAppliedEvent is raised when an entry is folded into a stock row
type StockEntryAppliedEvent struct {
	shared.BaseDomainEvent
	Kind          StockEntryKind  `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	LowStock      bool            `json:"low_stock"`
}

// NewStockEntryAppliedEvent creates a new stock entry applied event
func NewStockEntryAppliedEvent(stock *WarehouseStock, entry *StockEntry) *StockEntryAppliedEvent {
	return &StockEntryAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockEntryApplied, "WarehouseStock", stock.ID),
		Kind:            entry.Kind,
		Quantity:        entry.Quantity,
		UnitCost:        entry.UnitCost,
		BalanceBefore:   entry.BalanceBefore,
		BalanceAfter:    entry.BalanceAfter,
		LowStock:        stock.IsLowStock(),
	}
}

// StockRecalculatedEvent is raised when a recalculation rewrites a stock row
type StockRecalculatedEvent struct {
	shared.BaseDomainEvent
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// NewStockRecalculatedEvent creates a new stock recalculated event
func NewStockRecalculatedEvent(stock *WarehouseStock) *StockRecalculatedEvent {
	return &StockRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRecalculated, "WarehouseStock", stock.ID),
		Quantity:        stock.CurrentStock,
		AverageCost:     stock.AverageCost,
	}
}

// TransferRequestedEvent is raised when a transfer request is created
type TransferRequestedEvent struct {
	shared.BaseDomainEvent
	Quantity decimal.Decimal `json:"quantity"`
}

// NewTransferRequestedEvent creates a new transfer requested event
func NewTransferRequestedEvent(transfer *Transfer) *TransferRequestedEvent {
	return &TransferRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferRequested, "Transfer", transfer.ID),
		Quantity:        transfer.Quantity,
	}
}

// TransferCompletedEvent is raised when a transfer realizes its stock entries
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	Quantity  decimal.Decimal `json:"quantity"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// NewTransferCompletedEvent creates a new transfer completed event
func NewTransferCompletedEvent(transfer *Transfer) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompleted, "Transfer", transfer.ID),
		Quantity:        transfer.Quantity,
		TotalCost:       transfer.TotalCost,
	}
}

// ProductionCompletedEvent is raised when a production run realizes its
// stock entries
type ProductionCompletedEvent struct {
	shared.BaseDomainEvent
	ProducedQuantity decimal.Decimal `json:"produced_quantity"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ItemCount        int             `json:"item_count"`
}

// NewProductionCompletedEvent creates a new production completed event
func NewProductionCompletedEvent(production *OpenProduction) *ProductionCompletedEvent {
	return &ProductionCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeProductionCompleted, "OpenProduction", production.ID),
		ProducedQuantity: production.ProducedQuantity,
		TotalCost:        production.TotalCost,
		ItemCount:        len(production.Items),
	}
}
