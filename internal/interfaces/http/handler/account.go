package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appledger "github.com/restobo/backend/internal/application/ledger"
	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/interfaces/http/dto"
)

const dateLayout = "2006-01-02"

// AccountHandler handles account ledger API endpoints
type AccountHandler struct {
	BaseHandler
	accounts   *appledger.AccountService
	statements *appledger.StatementService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *appledger.AccountService, statements *appledger.StatementService) *AccountHandler {
	return &AccountHandler{
		accounts:   accounts,
		statements: statements,
	}
}

// CreateAccountRequest is the payload for opening an account
type CreateAccountRequest struct {
	Name           string  `json:"name" binding:"required,max=200"`
	Type           string  `json:"type" binding:"required,oneof=SUPPLIER CUSTOMER BOTH"`
	Phone          string  `json:"phone" binding:"omitempty,max=30"`
	TaxNumber      string  `json:"tax_number" binding:"omitempty,max=50"`
	CreditLimit    string  `json:"credit_limit" binding:"omitempty"`
	OpeningBalance string  `json:"opening_balance" binding:"omitempty"`
}

// UpdateAccountRequest is the payload for updating account fields
type UpdateAccountRequest struct {
	Name        string `json:"name" binding:"omitempty,max=200"`
	Phone       string `json:"phone" binding:"omitempty,max=30"`
	TaxNumber   string `json:"tax_number" binding:"omitempty,max=50"`
	CreditLimit string `json:"credit_limit" binding:"omitempty"`
}

// RecordEntryRequest is the payload for appending a ledger entry
type RecordEntryRequest struct {
	Kind       string         `json:"kind" binding:"required,oneof=DEBT CREDIT PAYMENT ADJUSTMENT"`
	Amount     string         `json:"amount" binding:"required"`
	OccurredAt string         `json:"occurred_at" binding:"required"`
	Reference  string         `json:"reference" binding:"omitempty,max=100"`
	Detail     map[string]any `json:"detail" binding:"omitempty"`
}

// parseDecimal parses a decimal request field, returning zero for empty input
func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// parseDate parses a YYYY-MM-DD request field
func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// endOfDay extends a date-granularity window bound to the last instant of
// that day. Entries carry intraday timestamps (completions are stamped with
// the wall clock), so an inclusive end bound at midnight would drop
// everything that happened on the end day itself.
func endOfDay(t time.Time) time.Time {
	return t.Add(24*time.Hour - time.Nanosecond)
}

// buildFilter converts list query parameters into a domain filter
func buildFilter(req dto.ListRequest, filters map[string]interface{}) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	for k, v := range filters {
		filter.Filters[k] = v
	}
	return filter
}

// Create opens a new account
// @Summary Create account
// @Tags ledger
// @Router /ledger/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	creditLimit, err := parseDecimal(req.CreditLimit)
	if err != nil {
		h.BadRequest(c, "Invalid credit_limit")
		return
	}
	openingBalance, err := parseDecimal(req.OpeningBalance)
	if err != nil {
		h.BadRequest(c, "Invalid opening_balance")
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), appledger.CreateAccountInput{
		Name:           req.Name,
		Type:           ledger.AccountType(req.Type),
		Phone:          req.Phone,
		TaxNumber:      req.TaxNumber,
		CreditLimit:    creditLimit,
		OpeningBalance: openingBalance,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// Update changes descriptive account fields
// @Summary Update account
// @Tags ledger
// @Router /ledger/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	creditLimit, err := parseDecimal(req.CreditLimit)
	if err != nil {
		h.BadRequest(c, "Invalid credit_limit")
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), accountID, appledger.UpdateAccountInput{
		Name:        req.Name,
		Phone:       req.Phone,
		TaxNumber:   req.TaxNumber,
		CreditLimit: creditLimit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Get retrieves one account
// @Summary Get account
// @Tags ledger
// @Router /ledger/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	account, err := h.accounts.Get(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List returns accounts with pagination and filters
// @Summary List accounts
// @Tags ledger
// @Router /ledger/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	filters := make(map[string]interface{})
	if accountType := c.Query("type"); accountType != "" {
		filters["type"] = accountType
	}
	if isActive := c.Query("is_active"); isActive != "" {
		filters["is_active"] = isActive == "true"
	}
	if c.Query("over_credit_limit") == "true" {
		filters["over_credit_limit"] = true
	}

	filter := buildFilter(req, filters)
	page, err := h.accounts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Deactivate soft-deletes an account
// @Summary Deactivate account
// @Tags ledger
// @Router /ledger/accounts/{id} [delete]
func (h *AccountHandler) Deactivate(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accounts.Deactivate(c.Request.Context(), accountID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordEntry appends one ledger entry to an account
// @Summary Record ledger entry
// @Tags ledger
// @Router /ledger/accounts/{id}/entries [post]
func (h *AccountHandler) RecordEntry(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}
	occurredAt, err := parseDate(req.OccurredAt)
	if err != nil {
		h.BadRequest(c, "Invalid occurred_at, expected YYYY-MM-DD")
		return
	}

	entry, err := h.accounts.RecordEntry(c.Request.Context(), appledger.RecordEntryInput{
		AccountID:  accountID,
		Kind:       ledger.EntryKind(req.Kind),
		Amount:     amount,
		OccurredAt: occurredAt,
		Reference:  req.Reference,
		Detail:     req.Detail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetStatement computes an account statement over a date window
// @Summary Get account statement
// @Tags ledger
// @Router /ledger/accounts/{id}/statement [get]
func (h *AccountHandler) GetStatement(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}
	detailed := c.DefaultQuery("detailed", "true") == "true"

	statement, err := h.statements.GetStatement(c.Request.Context(), accountID, start, endOfDay(end), detailed)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}

// GetBalance folds an account's history up to a date
// @Summary Get account balance as of date
// @Tags ledger
// @Router /ledger/accounts/{id}/balance [get]
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	asOf := time.Now()
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := parseDate(asOfStr)
		if err != nil {
			h.BadRequest(c, "Invalid as_of, expected YYYY-MM-DD")
			return
		}
		asOf = endOfDay(parsed)
	}

	balance, err := h.statements.GetBalanceAsOf(c.Request.Context(), accountID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
