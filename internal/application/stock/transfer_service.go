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

// TransferInput creates a transfer request
type TransferInput struct {
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	MaterialID      uuid.UUID
	Quantity        decimal.Decimal
	Reason          string
	RequestDate     time.Time
}

// TransferDTO is the API representation of a transfer
type TransferDTO struct {
	ID              uuid.UUID       `json:"id"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id"`
	MaterialID      uuid.UUID       `json:"material_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Status          string          `json:"status"`
	RequestDate     time.Time       `json:"request_date"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// ToTransferDTO maps a domain transfer to its API representation
func ToTransferDTO(t *stock.Transfer) *TransferDTO {
	return &TransferDTO{
		ID:              t.ID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		MaterialID:      t.MaterialID,
		Quantity:        t.Quantity,
		Status:          string(t.Status),
		RequestDate:     t.RequestDate,
		CompletedAt:     t.CompletedAt,
		Reason:          t.Reason,
		UnitCost:        t.UnitCost,
		TotalCost:       t.TotalCost,
	}
}

// TransferService handles transfer requests and their realization.
// Completing a transfer appends exactly one TRANSFER_OUT and one TRANSFER_IN
// entry and updates both projections inside a single transaction; two
// concurrent transfers draining the same key serialize through the
// optimistic lock on the source row.
type TransferService struct {
	scope      TransactionScope
	logger     *zap.Logger
	maxRetries int
}

// NewTransferService creates a new transfer service
func NewTransferService(scope TransactionScope, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		scope:      scope,
		logger:     logger,
		maxRetries: defaultMaxRetries,
	}
}

// Create records a pending transfer request. The availability check happens
// at completion time against fresh state, not here.
func (s *TransferService) Create(ctx context.Context, input TransferInput) (*TransferDTO, error) {
	var result *TransferDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Materials().FindByID(ctx, input.MaterialID); err != nil {
			return err
		}
		transfer, err := stock.NewTransfer(input.FromWarehouseID, input.ToWarehouseID, input.MaterialID, input.Quantity, input.Reason, input.RequestDate)
		if err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, transfer); err != nil {
			return err
		}
		result = ToTransferDTO(transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Complete realizes a pending transfer: one TRANSFER_OUT at the source and
// one TRANSFER_IN at the destination, both costed at the source's average
// cost at completion time, atomically with both projection updates.
func (s *TransferService) Complete(ctx context.Context, transferID uuid.UUID) (*TransferDTO, error) {
	var result *TransferDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			transfer, err := repos.Transfers().FindByID(ctx, transferID)
			if err != nil {
				return err
			}
			if transfer.Status != stock.TransferStatusPending {
				return shared.NewDomainError("INVALID_STATE", "Only pending transfers can be completed")
			}

			source, err := repos.Stocks().FindByKey(ctx, transfer.MaterialID, transfer.FromWarehouseID)
			if err != nil {
				return err
			}
			material, err := repos.Materials().FindByID(ctx, transfer.MaterialID)
			if err != nil {
				return err
			}
			dest, destCreated, err := findOrCreateStock(ctx, repos, material, transfer.ToWarehouseID)
			if err != nil {
				return err
			}

			completedAt := time.Now()
			unitCost := source.AverageCost

			outEntry, err := stock.NewStockEntry(transfer.MaterialID, transfer.FromWarehouseID, stock.StockEntryTransferOut, transfer.Quantity, unitCost, completedAt)
			if err != nil {
				return err
			}
			outEntry.WithSource(stock.SourceTypeTransfer, transfer.ID)

			inEntry, err := stock.NewStockEntry(transfer.MaterialID, transfer.ToWarehouseID, stock.StockEntryTransferIn, transfer.Quantity, unitCost, completedAt)
			if err != nil {
				return err
			}
			inEntry.WithSource(stock.SourceTypeTransfer, transfer.ID)

			// The OUT apply enforces the availability floor; a rejection
			// rolls back the whole transaction, realizing nothing.
			if err := source.Apply(outEntry); err != nil {
				return err
			}
			if err := dest.Apply(inEntry); err != nil {
				return err
			}
			if err := transfer.Complete(unitCost, completedAt); err != nil {
				return err
			}

			if err := repos.Entries().AppendAll(ctx, []*stock.StockEntry{outEntry, inEntry}); err != nil {
				return err
			}
			if err := repos.Stocks().SaveWithLock(ctx, source); err != nil {
				return err
			}
			if destCreated {
				if err := repos.Stocks().Save(ctx, dest); err != nil {
					return err
				}
			} else if err := repos.Stocks().SaveWithLock(ctx, dest); err != nil {
				return err
			}
			if err := repos.Transfers().SaveWithLock(ctx, transfer); err != nil {
				return err
			}

			result = ToTransferDTO(transfer)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		zap.String("transfer_id", transferID.String()),
		zap.String("quantity", result.Quantity.String()),
		zap.String("total_cost", result.TotalCost.String()),
	)
	return result, nil
}

// Cancel abandons a pending transfer without realizing any stock entries
func (s *TransferService) Cancel(ctx context.Context, transferID uuid.UUID) (*TransferDTO, error) {
	var result *TransferDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			transfer, err := repos.Transfers().FindByID(ctx, transferID)
			if err != nil {
				return err
			}
			if err := transfer.Cancel(); err != nil {
				return err
			}
			if err := repos.Transfers().SaveWithLock(ctx, transfer); err != nil {
				return err
			}
			result = ToTransferDTO(transfer)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one transfer
func (s *TransferService) Get(ctx context.Context, transferID uuid.UUID) (*TransferDTO, error) {
	var result *TransferDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfer, err := repos.Transfers().FindByID(ctx, transferID)
		if err != nil {
			return err
		}
		result = ToTransferDTO(transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns transfers matching the filter
func (s *TransferService) List(ctx context.Context, filter shared.Filter) ([]TransferDTO, error) {
	var result []TransferDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transfers, err := repos.Transfers().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		result = make([]TransferDTO, 0, len(transfers))
		for i := range transfers {
			result = append(result, *ToTransferDTO(&transfers[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
