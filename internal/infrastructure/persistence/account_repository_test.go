package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
)

// newMockDB creates a GORM handle backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormAccountRepository_FindByID(t *testing.T) {
	t.Run("finds existing account", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAccountRepository(gormDB)

		accountID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name", "type", "current_balance", "is_active", "version"}).
			AddRow(accountID, "Fresh Produce Co", "SUPPLIER", decimal.NewFromInt(300), true, 2)

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(accountID, 1).
			WillReturnRows(rows)

		account, err := repo.FindByID(context.Background(), accountID)

		assert.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, "Fresh Produce Co", account.Name)
		assert.Equal(t, ledger.AccountTypeSupplier, account.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing account", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAccountRepository(gormDB)

		accountID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(accountID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		account, err := repo.FindByID(context.Background(), accountID)

		assert.Nil(t, account)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_SaveWithLock(t *testing.T) {
	t.Run("returns conflict when version check misses", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormAccountRepository(gormDB)

		account, err := ledger.NewAccount("Fresh Produce Co", ledger.AccountTypeSupplier, decimal.Zero)
		require.NoError(t, err)
		account.IncrementVersion()

		mock.ExpectExec(`UPDATE "accounts" SET .* WHERE id = .* AND version = .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), account)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrConcurrencyConflict.Code, domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountEntryRepository_SumSignedBefore(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormAccountEntryRepository(gormDB)

	accountID := uuid.New()
	cutoff := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(signed_amount\), 0\) as total FROM "account_entries" WHERE account_id = \$1 AND occurred_at < \$2`).
		WithArgs(accountID, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("600"))

	total, err := repo.SumSignedBefore(context.Background(), accountID, cutoff)

	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(600)), "got %s", total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
