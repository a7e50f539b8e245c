package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
)

// StatementService answers point-in-time statement queries. The opening
// balance is the fold of everything before the window; in-window entries
// carry running balances computed incrementally from it.
type StatementService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewStatementService creates a new statement service
func NewStatementService(scope TransactionScope, logger *zap.Logger) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementService{scope: scope, logger: logger}
}

// GetStatement builds an account statement for a date window. Both bounds
// are inclusive. When detailed is false the per-entry payload is omitted;
// the numbers are identical.
func (s *StatementService) GetStatement(ctx context.Context, accountID uuid.UUID, start, end time.Time, detailed bool) (*ledger.Statement, error) {
	if end.Before(start) {
		return nil, shared.ErrInvalidPeriod
	}

	var statement *ledger.Statement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Accounts().FindByID(ctx, accountID); err != nil {
			return err
		}
		opening, err := repos.Entries().SumSignedBefore(ctx, accountID, start)
		if err != nil {
			return err
		}
		entries, err := repos.Entries().FindByAccountInRange(ctx, accountID, start, end)
		if err != nil {
			return err
		}
		statement = ledger.BuildStatement(accountID, start, end, opening, entries, detailed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("statement built",
		zap.String("account_id", accountID.String()),
		zap.Int("entries", statement.TransactionCount),
	)
	return statement, nil
}

// GetBalanceAsOf folds an account's history up to and including a date.
// Used when the materialized balance is not the right vantage point.
func (s *StatementService) GetBalanceAsOf(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*AccountBalanceDTO, error) {
	var result *AccountBalanceDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Accounts().FindByID(ctx, accountID); err != nil {
			return err
		}
		// SumSignedBefore is exclusive, so shift the cutoff just past the day.
		balance, err := repos.Entries().SumSignedBefore(ctx, accountID, asOf.Add(time.Nanosecond))
		if err != nil {
			return err
		}
		result = &AccountBalanceDTO{AccountID: accountID, AsOf: asOf, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AccountBalanceDTO is a point-in-time balance answer
type AccountBalanceDTO struct {
	AccountID uuid.UUID       `json:"account_id"`
	AsOf      time.Time       `json:"as_of"`
	Balance   decimal.Decimal `json:"balance"`
}
