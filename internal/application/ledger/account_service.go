package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
)

// AccountService handles account lifecycle and entry recording. Every
// mutation wraps the read-validate-write sequence in one transaction scope
// and retries bounded times on optimistic-lock conflicts.
type AccountService struct {
	scope      TransactionScope
	logger     *zap.Logger
	maxRetries int
}

// NewAccountService creates a new account service
func NewAccountService(scope TransactionScope, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		scope:      scope,
		logger:     logger,
		maxRetries: defaultMaxRetries,
	}
}

// Create opens a new account. A non-zero opening balance becomes an
// ADJUSTMENT entry so the entry history folds to the materialized balance
// from zero.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*AccountDTO, error) {
	var result *AccountDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := ledger.NewAccount(input.Name, input.Type, input.CreditLimit)
		if err != nil {
			return err
		}
		account.Phone = input.Phone
		account.TaxNumber = input.TaxNumber

		if !input.OpeningBalance.IsZero() {
			account.OpeningBalance = input.OpeningBalance
			entry, err := ledger.NewAccountEntry(account.ID, ledger.EntryKindAdjustment, input.OpeningBalance, account.CreatedAt, "opening balance")
			if err != nil {
				return err
			}
			if err := account.ApplyEntry(entry); err != nil {
				return err
			}
			if err := repos.Entries().Append(ctx, entry); err != nil {
				return err
			}
		}

		if err := repos.Accounts().Save(ctx, account); err != nil {
			return err
		}
		result = ToAccountDTO(account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("account_id", result.ID.String()),
		zap.String("type", result.Type),
	)
	return result, nil
}

// RecordEntry appends one ledger entry and folds it into the balance.
// The append and the projection update share one transaction.
func (s *AccountService) RecordEntry(ctx context.Context, input RecordEntryInput) (*EntryDTO, error) {
	var result *EntryDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			account, err := repos.Accounts().FindByID(ctx, input.AccountID)
			if err != nil {
				return err
			}
			entry, err := ledger.NewAccountEntry(input.AccountID, input.Kind, input.Amount, input.OccurredAt, input.Reference)
			if err != nil {
				return err
			}
			if input.Detail != nil {
				entry.WithDetail(input.Detail)
			}
			if err := account.ApplyEntry(entry); err != nil {
				return err
			}
			if err := repos.Entries().Append(ctx, entry); err != nil {
				return err
			}
			if err := repos.Accounts().SaveWithLock(ctx, account); err != nil {
				return err
			}
			result = ToEntryDTO(entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ledger entry recorded",
		zap.String("account_id", input.AccountID.String()),
		zap.String("kind", string(input.Kind)),
		zap.String("amount", input.Amount.String()),
	)
	return result, nil
}

// Update changes descriptive fields that do not affect the ledger
func (s *AccountService) Update(ctx context.Context, accountID uuid.UUID, input UpdateAccountInput) (*AccountDTO, error) {
	var result *AccountDTO
	err := withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			account, err := repos.Accounts().FindByID(ctx, accountID)
			if err != nil {
				return err
			}
			if err := account.UpdateInfo(input.Name, input.Phone, input.TaxNumber, input.CreditLimit); err != nil {
				return err
			}
			if err := repos.Accounts().SaveWithLock(ctx, account); err != nil {
				return err
			}
			result = ToAccountDTO(account)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Deactivate soft-deletes an account. Accounts with linked entries are never
// physically removed.
func (s *AccountService) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	return withConflictRetry(ctx, s.maxRetries, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			account, err := repos.Accounts().FindByID(ctx, accountID)
			if err != nil {
				return err
			}
			if err := account.Deactivate(); err != nil {
				return err
			}
			return repos.Accounts().SaveWithLock(ctx, account)
		})
	})
}

// Get returns one account
func (s *AccountService) Get(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error) {
	var result *AccountDTO
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.Accounts().FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		result = ToAccountDTO(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns accounts matching the filter with the total count
func (s *AccountService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[AccountDTO], error) {
	var result *shared.Paginated[AccountDTO]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		accounts, err := repos.Accounts().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.Accounts().Count(ctx, filter)
		if err != nil {
			return err
		}
		dtos := make([]AccountDTO, 0, len(accounts))
		for i := range accounts {
			dtos = append(dtos, *ToAccountDTO(&accounts[i]))
		}
		paginated := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
		result = &paginated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
