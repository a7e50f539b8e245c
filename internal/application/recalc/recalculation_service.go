package recalc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	ledgerapp "github.com/restobo/backend/internal/application/ledger"
	stockapp "github.com/restobo/backend/internal/application/stock"
	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

const (
	defaultPageSize = 200
	lockKey         = "recalc:all"
	lockTTL         = 30 * time.Minute
)

// ScopeLocker serializes recalculation runs so a full projection rewrite
// never races another one. Incremental applies stay safe through per-row
// optimistic locking; the scope lock only guards against overlapping jobs.
type ScopeLocker interface {
	// Acquire takes the named lock; returns false when it is already held
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees the named lock
	Release(ctx context.Context, key string) error
}

// FailedKey reports one account or stock key whose rewrite failed
type FailedKey struct {
	Kind        string     `json:"kind"`
	AccountID   *uuid.UUID `json:"account_id,omitempty"`
	MaterialID  *uuid.UUID `json:"material_id,omitempty"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	Error       string     `json:"error"`
}

// Result summarizes a recalculation run
type Result struct {
	UpdatedAccounts            int         `json:"updated_accounts"`
	TotalTransactionsProcessed int         `json:"total_transactions_processed"`
	TotalPaymentsProcessed     int         `json:"total_payments_processed"`
	UpdatedStocks              int         `json:"updated_stocks"`
	UpdatedMaterials           int         `json:"updated_materials"`
	FailedKeys                 []FailedKey `json:"failed_keys,omitempty"`
	StartedAt                  time.Time   `json:"started_at"`
	FinishedAt                 time.Time   `json:"finished_at"`
}

// RecalculationService re-derives every materialized projection from the
// raw entry history. It never creates, deletes or reorders entries; it only
// rewrites projections, one short transaction per key, so a failure on one
// key leaves every already-committed key corrected. Running it twice yields
// the same result.
type RecalculationService struct {
	ledgerScope ledgerapp.TransactionScope
	stockScope  stockapp.TransactionScope
	locker      ScopeLocker
	logger      *zap.Logger
	pageSize    int
}

// NewRecalculationService creates a new recalculation service
func NewRecalculationService(ledgerScope ledgerapp.TransactionScope, stockScope stockapp.TransactionScope, locker ScopeLocker, logger *zap.Logger) *RecalculationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalculationService{
		ledgerScope: ledgerScope,
		stockScope:  stockScope,
		locker:      locker,
		logger:      logger,
		pageSize:    defaultPageSize,
	}
}

// RecalculateAll rewrites every account balance and every (material,
// warehouse) stock projection from the entry logs. Returns the run summary;
// when some keys failed the summary still covers the committed rewrites and
// the error carries the failure details.
func (s *RecalculationService) RecalculateAll(ctx context.Context) (*Result, error) {
	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, lockKey, lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, shared.ErrRecalculationBusy
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				s.logger.Warn("failed to release recalculation lock", zap.Error(err))
			}
		}()
	}

	result := &Result{StartedAt: time.Now()}

	if err := s.recalculateAccounts(ctx, result); err != nil {
		return nil, err
	}
	if err := s.recalculateStocks(ctx, result); err != nil {
		return nil, err
	}

	result.FinishedAt = time.Now()

	s.logger.Info("recalculation finished",
		zap.Int("updated_accounts", result.UpdatedAccounts),
		zap.Int("updated_stocks", result.UpdatedStocks),
		zap.Int("failed_keys", len(result.FailedKeys)),
		zap.Duration("took", result.FinishedAt.Sub(result.StartedAt)),
	)

	if len(result.FailedKeys) > 0 {
		return result, shared.NewDomainError("RECALCULATION_PARTIAL", "Recalculation completed with failures").
			WithDetails(map[string]any{"failed_keys": len(result.FailedKeys)})
	}
	return result, nil
}

// recalculateAccounts pages through every account and re-folds its history
// from zero, each account in its own short transaction.
func (s *RecalculationService) recalculateAccounts(ctx context.Context, result *Result) error {
	for offset := 0; ; offset += s.pageSize {
		var ids []uuid.UUID
		err := s.ledgerScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
			var err error
			ids, err = repos.Accounts().FindIDs(ctx, offset, s.pageSize)
			return err
		})
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := s.recalculateAccount(ctx, id, result); err != nil {
				accountID := id
				result.FailedKeys = append(result.FailedKeys, FailedKey{
					Kind:      "account",
					AccountID: &accountID,
					Error:     err.Error(),
				})
				s.logger.Warn("account recalculation failed",
					zap.String("account_id", id.String()),
					zap.Error(err),
				)
			}
		}
	}
}

func (s *RecalculationService) recalculateAccount(ctx context.Context, accountID uuid.UUID, result *Result) error {
	return s.ledgerScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		account, err := repos.Accounts().FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		entries, err := repos.Entries().FindByAccount(ctx, accountID)
		if err != nil {
			return err
		}

		balance := ledger.FoldBalance(decimal.Zero, entries)
		transactions, payments := 0, 0
		for i := range entries {
			if entries[i].Kind.IsPayment() {
				payments++
			} else {
				transactions++
			}
		}

		account.Rebuild(balance, transactions, payments)
		if err := repos.Accounts().SaveWithLock(ctx, account); err != nil {
			return err
		}

		result.UpdatedAccounts++
		result.TotalTransactionsProcessed += transactions
		result.TotalPaymentsProcessed += payments
		return nil
	})
}

// recalculateStocks pages through every (material, warehouse) key present
// in the entry log and replays it from zero, then rewrites each touched
// material's cross-warehouse average cost.
func (s *RecalculationService) recalculateStocks(ctx context.Context, result *Result) error {
	touchedMaterials := make(map[uuid.UUID]struct{})

	for offset := 0; ; offset += s.pageSize {
		var keys []stock.StockKey
		err := s.stockScope.Execute(ctx, func(repos stockapp.TransactionalRepositories) error {
			var err error
			keys, err = repos.Entries().DistinctKeys(ctx, offset, s.pageSize)
			return err
		})
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			break
		}

		for _, key := range keys {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := s.recalculateStockKey(ctx, key, result); err != nil {
				materialID, warehouseID := key.MaterialID, key.WarehouseID
				result.FailedKeys = append(result.FailedKeys, FailedKey{
					Kind:        "stock",
					MaterialID:  &materialID,
					WarehouseID: &warehouseID,
					Error:       err.Error(),
				})
				s.logger.Warn("stock recalculation failed",
					zap.String("material_id", key.MaterialID.String()),
					zap.String("warehouse_id", key.WarehouseID.String()),
					zap.Error(err),
				)
				continue
			}
			touchedMaterials[key.MaterialID] = struct{}{}
		}
	}

	for materialID := range touchedMaterials {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.recalculateMaterialCost(ctx, materialID); err != nil {
			id := materialID
			result.FailedKeys = append(result.FailedKeys, FailedKey{
				Kind:       "material",
				MaterialID: &id,
				Error:      err.Error(),
			})
			continue
		}
		result.UpdatedMaterials++
	}
	return nil
}

func (s *RecalculationService) recalculateStockKey(ctx context.Context, key stock.StockKey, result *Result) error {
	return s.stockScope.Execute(ctx, func(repos stockapp.TransactionalRepositories) error {
		entries, err := repos.Entries().FindByKey(ctx, key.MaterialID, key.WarehouseID)
		if err != nil {
			return err
		}
		snapshot := stock.Replay(entries)

		row, err := repos.Stocks().FindByKey(ctx, key.MaterialID, key.WarehouseID)
		if err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != shared.ErrNotFound.Code {
				return err
			}
			row, err = stock.NewWarehouseStock(key.MaterialID, key.WarehouseID)
			if err != nil {
				return err
			}
			row.Rebuild(snapshot)
			if err := repos.Stocks().Save(ctx, row); err != nil {
				return err
			}
			result.UpdatedStocks++
			return nil
		}

		row.Rebuild(snapshot)
		if err := repos.Stocks().SaveWithLock(ctx, row); err != nil {
			return err
		}
		result.UpdatedStocks++
		return nil
	})
}

func (s *RecalculationService) recalculateMaterialCost(ctx context.Context, materialID uuid.UUID) error {
	return s.stockScope.Execute(ctx, func(repos stockapp.TransactionalRepositories) error {
		material, err := repos.Materials().FindByID(ctx, materialID)
		if err != nil {
			return err
		}
		avg, err := repos.Stocks().WeightedAverageCost(ctx, materialID)
		if err != nil {
			return err
		}
		material.SetAverageCost(avg)
		return repos.Materials().SaveWithLock(ctx, material)
	})
}
