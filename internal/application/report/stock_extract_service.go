package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/restobo/backend/internal/domain/report"
	"github.com/restobo/backend/internal/domain/shared"
)

// StockExtractInput scopes a stock extract request
type StockExtractInput struct {
	StartDate    time.Time
	EndDate      time.Time
	Mode         report.Mode
	WarehouseIDs []uuid.UUID
	CategoryIDs  []uuid.UUID
}

// StockExtractService builds hierarchical stock movement reports. The
// repository does the per-key sums; the domain layer does the rollup.
type StockExtractService struct {
	movements       report.MovementRepository
	fallbackTaxRate decimal.Decimal
	logger          *zap.Logger
}

// NewStockExtractService creates a new stock extract service. fallbackTaxRate
// is the VAT percentage applied to materials that carry no rate of their own.
func NewStockExtractService(movements report.MovementRepository, fallbackTaxRate decimal.Decimal, logger *zap.Logger) *StockExtractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockExtractService{
		movements:       movements,
		fallbackTaxRate: fallbackTaxRate,
		logger:          logger,
	}
}

// GetStockExtract returns the warehouse → main category → sub category →
// material movement tree for the window, valued per the requested mode.
func (s *StockExtractService) GetStockExtract(ctx context.Context, input StockExtractInput) (*report.StockExtract, error) {
	if !input.Mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid report mode: "+string(input.Mode))
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, shared.ErrInvalidPeriod
	}

	rows, err := s.movements.FindMovements(ctx, report.MovementFilter{
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		WarehouseIDs: input.WarehouseIDs,
		CategoryIDs:  input.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}

	extract, err := report.Aggregate(rows, input.Mode, input.StartDate, input.EndDate, s.fallbackTaxRate)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("stock extract built",
		zap.String("mode", string(input.Mode)),
		zap.Int("rows", len(rows)),
		zap.Int("warehouses", len(extract.Warehouses)),
	)
	return extract, nil
}
