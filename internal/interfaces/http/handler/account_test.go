package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/restobo/backend/internal/application/ledger"
	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*ledger.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*ledger.Account)}
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, *account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, account *ledger.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) SaveWithLock(ctx context.Context, account *ledger.Account) error {
	return r.Save(ctx, account)
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.accounts)), nil
}

func (r *fakeAccountRepo) FindIDs(_ context.Context, offset, limit int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end], nil
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []ledger.AccountEntry
}

func (r *fakeEntryRepo) Append(_ context.Context, entry *ledger.AccountEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.Sequence = int64(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeEntryRepo) forAccount(accountID uuid.UUID) []ledger.AccountEntry {
	out := make([]ledger.AccountEntry, 0)
	for _, entry := range r.entries {
		if entry.AccountID == accountID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

func (r *fakeEntryRepo) FindByAccount(_ context.Context, accountID uuid.UUID) ([]ledger.AccountEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forAccount(accountID), nil
}

func (r *fakeEntryRepo) FindByAccountInRange(_ context.Context, accountID uuid.UUID, start, end time.Time) ([]ledger.AccountEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.AccountEntry, 0)
	for _, entry := range r.forAccount(accountID) {
		if !entry.OccurredAt.Before(start) && !entry.OccurredAt.After(end) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) SumSignedBefore(_ context.Context, accountID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, entry := range r.forAccount(accountID) {
		if entry.OccurredAt.Before(before) {
			sum = sum.Add(entry.SignedAmount)
		}
	}
	return sum, nil
}

func (r *fakeEntryRepo) CountByAccount(_ context.Context, accountID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.forAccount(accountID))), nil
}

func newAccountRouter(t *testing.T) (*gin.Engine, *fakeAccountRepo) {
	t.Helper()
	accounts := newFakeAccountRepo()
	entries := &fakeEntryRepo{}
	scope := appledger.NewNoOpTransactionScope(accounts, entries)

	handler := NewAccountHandler(
		appledger.NewAccountService(scope, nil),
		appledger.NewStatementService(scope, nil),
	)

	router := gin.New()
	router.Use(middleware.RequestID())
	group := router.Group("/api/v1/ledger")
	group.POST("/accounts", handler.Create)
	group.GET("/accounts/:id", handler.Get)
	group.GET("/accounts", handler.List)
	group.POST("/accounts/:id/entries", handler.RecordEntry)
	group.GET("/accounts/:id/statement", handler.GetStatement)
	group.GET("/accounts/:id/balance", handler.GetBalance)
	return router, accounts
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func createAccount(t *testing.T, router *gin.Engine, name string) uuid.UUID {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts", gin.H{
		"name": name,
		"type": "SUPPLIER",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestAccountHandler_Create(t *testing.T) {
	router, _ := newAccountRouter(t)

	t.Run("creates a supplier account", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts", gin.H{
			"name":         "Fresh Produce Co",
			"type":         "SUPPLIER",
			"credit_limit": "5000",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Fresh Produce Co")
	})

	t.Run("rejects an unknown account type", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts", gin.H{
			"name": "Broken",
			"type": "VENDOR",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	})

	t.Run("rejects a malformed credit limit", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts", gin.H{
			"name":         "Broken",
			"type":         "SUPPLIER",
			"credit_limit": "not-a-number",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAccountHandler_Get(t *testing.T) {
	router, _ := newAccountRouter(t)

	t.Run("returns 404 for unknown account", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/ledger/accounts/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("returns 400 for malformed ID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/ledger/accounts/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns an existing account", func(t *testing.T) {
		id := createAccount(t, router, "Meat Supplier")

		w := doJSON(t, router, http.MethodGet, "/api/v1/ledger/accounts/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Meat Supplier")
	})
}

func TestAccountHandler_RecordEntry(t *testing.T) {
	router, _ := newAccountRouter(t)
	id := createAccount(t, router, "Dairy Supplier")

	t.Run("records a debt entry", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts/"+id.String()+"/entries", gin.H{
			"kind":        "DEBT",
			"amount":      "150.50",
			"occurred_at": "2026-03-10",
			"reference":   "INV-1001",
		})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "INV-1001")
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts/"+id.String()+"/entries", gin.H{
			"kind":        "REFUND",
			"amount":      "10",
			"occurred_at": "2026-03-10",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts/"+id.String()+"/entries", gin.H{
			"kind":        "DEBT",
			"amount":      "10",
			"occurred_at": "10/03/2026",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "occurred_at")
	})
}

func TestAccountHandler_Statement(t *testing.T) {
	router, _ := newAccountRouter(t)
	id := createAccount(t, router, "Beverage Supplier")

	record := func(kind, amount, date string) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts/"+id.String()+"/entries", gin.H{
			"kind":        kind,
			"amount":      amount,
			"occurred_at": date,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	record("DEBT", "100", "2026-02-20")
	record("DEBT", "200", "2026-03-05")
	record("PAYMENT", "50", "2026-03-12")

	t.Run("folds the window with an opening balance", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet,
			"/api/v1/ledger/accounts/"+id.String()+"/statement?start_date=2026-03-01&end_date=2026-03-31", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Data struct {
				OpeningBalance decimal.Decimal `json:"opening_balance"`
				ClosingBalance decimal.Decimal `json:"closing_balance"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.OpeningBalance.Equal(decimal.NewFromInt(100)), resp.Data.OpeningBalance.String())
		assert.True(t, resp.Data.ClosingBalance.Equal(decimal.NewFromInt(250)), resp.Data.ClosingBalance.String())
	})

	t.Run("rejects a missing date window", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet,
			"/api/v1/ledger/accounts/"+id.String()+"/statement", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reports the balance as of a date", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet,
			"/api/v1/ledger/accounts/"+id.String()+"/balance?as_of=2026-03-06", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Data struct {
				Balance decimal.Decimal `json:"balance"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Balance.Equal(decimal.NewFromInt(300)), resp.Data.Balance.String())
	})
}

func TestAccountHandler_WindowIncludesEndDay(t *testing.T) {
	router, _ := newAccountRouter(t)

	// The opening-balance adjustment is stamped with the account's creation
	// wall-clock time, not midnight, like every entry realized intraday.
	w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/accounts", gin.H{
		"name":            "Produce Supplier",
		"type":            "SUPPLIER",
		"opening_balance": "75",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID
	today := time.Now().Format(dateLayout)

	t.Run("statement ending today includes intraday entries", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet,
			"/api/v1/ledger/accounts/"+id.String()+"/statement?start_date="+today+"&end_date="+today, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Data struct {
				ClosingBalance   decimal.Decimal `json:"closing_balance"`
				TransactionCount int             `json:"transaction_count"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.TransactionCount)
		assert.True(t, resp.Data.ClosingBalance.Equal(decimal.NewFromInt(75)), resp.Data.ClosingBalance.String())
	})

	t.Run("balance as of today includes intraday entries", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet,
			"/api/v1/ledger/accounts/"+id.String()+"/balance?as_of="+today, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Data struct {
				Balance decimal.Decimal `json:"balance"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Balance.Equal(decimal.NewFromInt(75)), resp.Data.Balance.String())
	})
}
