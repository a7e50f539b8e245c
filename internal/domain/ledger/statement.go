package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FoldBalance folds a slice of entries, already ordered by
// (OccurredAt, Sequence), into a balance starting from opening. This is the
// single balance derivation used by statements, incremental applies and
// recalculation; the incremental path must always agree with it.
func FoldBalance(opening decimal.Decimal, entries []AccountEntry) decimal.Decimal {
	balance := opening
	for i := range entries {
		balance = balance.Add(entries[i].SignedAmount)
	}
	return balance
}

// StatementLine is one entry within a statement window, carrying the running
// balance immediately after the entry was applied.
type StatementLine struct {
	EntryID        uuid.UUID       `json:"entry_id"`
	OccurredAt     time.Time       `json:"occurred_at"`
	Kind           EntryKind       `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	SignedAmount   decimal.Decimal `json:"signed_amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	Reference      string          `json:"reference,omitempty"`
	Detail         map[string]any  `json:"detail,omitempty"`
}

// Statement is a point-in-time view of an account over a date window
type Statement struct {
	AccountID        uuid.UUID       `json:"account_id"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TransactionCount int             `json:"transaction_count"`
	Lines            []StatementLine `json:"lines"`
}

// BuildStatement assembles a statement from the opening balance (the fold of
// all entries before the window) and the in-window entries in canonical
// order. TotalDebit sums positive contributions, TotalCredit sums the
// magnitudes of negative ones. When detailed is false the per-entry payload
// is omitted; the computation is identical.
func BuildStatement(accountID uuid.UUID, start, end time.Time, opening decimal.Decimal, entries []AccountEntry, detailed bool) *Statement {
	stmt := &Statement{
		AccountID:      accountID,
		StartDate:      start,
		EndDate:        end,
		OpeningBalance: opening,
		ClosingBalance: opening,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		Lines:          make([]StatementLine, 0, len(entries)),
	}

	running := opening
	for i := range entries {
		e := &entries[i]
		running = running.Add(e.SignedAmount)
		if e.SignedAmount.IsPositive() {
			stmt.TotalDebit = stmt.TotalDebit.Add(e.SignedAmount)
		} else {
			stmt.TotalCredit = stmt.TotalCredit.Add(e.SignedAmount.Neg())
		}

		line := StatementLine{
			EntryID:        e.ID,
			OccurredAt:     e.OccurredAt,
			Kind:           e.Kind,
			Amount:         e.Amount,
			SignedAmount:   e.SignedAmount,
			RunningBalance: running,
			Reference:      e.Reference,
		}
		if detailed {
			line.Detail = e.Detail
		}
		stmt.Lines = append(stmt.Lines, line)
	}

	stmt.ClosingBalance = running
	stmt.TransactionCount = len(entries)
	return stmt
}
