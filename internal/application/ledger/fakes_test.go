package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobo/backend/internal/domain/ledger"
	"github.com/restobo/backend/internal/domain/shared"
)

// In-memory repositories for the service tests. They honor the same
// contracts as the gorm implementations: ErrNotFound on misses, canonical
// (occurred_at, sequence) ordering, SumSignedBefore strictly exclusive.

type fakeAccountRepo struct {
	items map[uuid.UUID]*ledger.Account
	order []uuid.UUID
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{items: make(map[uuid.UUID]*ledger.Account)}
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	if a, ok := r.items[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.Account, error) {
	out := make([]ledger.Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.items[id])
	}
	return out, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, a *ledger.Account) error {
	if _, ok := r.items[a.ID]; !ok {
		r.order = append(r.order, a.ID)
	}
	r.items[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) SaveWithLock(ctx context.Context, a *ledger.Account) error {
	return r.Save(ctx, a)
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeAccountRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeAccountRepo) FindIDs(_ context.Context, offset, limit int) ([]uuid.UUID, error) {
	if offset >= len(r.order) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.order) {
		end = len(r.order)
	}
	return r.order[offset:end], nil
}

type fakeEntryRepo struct {
	entries []ledger.AccountEntry
	nextSeq int64
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{}
}

func (r *fakeEntryRepo) Append(_ context.Context, entry *ledger.AccountEntry) error {
	r.nextSeq++
	entry.Sequence = r.nextSeq
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeEntryRepo) FindByAccount(_ context.Context, accountID uuid.UUID) ([]ledger.AccountEntry, error) {
	var out []ledger.AccountEntry
	for _, e := range r.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sortAccountEntries(out)
	return out, nil
}

func (r *fakeEntryRepo) FindByAccountInRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]ledger.AccountEntry, error) {
	all, _ := r.FindByAccount(ctx, accountID)
	var out []ledger.AccountEntry
	for _, e := range all {
		if !e.OccurredAt.Before(start) && !e.OccurredAt.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) SumSignedBefore(ctx context.Context, accountID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	all, _ := r.FindByAccount(ctx, accountID)
	sum := decimal.Zero
	for _, e := range all {
		if e.OccurredAt.Before(before) {
			sum = sum.Add(e.SignedAmount)
		}
	}
	return sum, nil
}

func (r *fakeEntryRepo) CountByAccount(_ context.Context, accountID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.entries {
		if e.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func sortAccountEntries(entries []ledger.AccountEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].OccurredAt.Equal(entries[j].OccurredAt) {
			return entries[i].Sequence < entries[j].Sequence
		}
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})
}

type testEnv struct {
	scope    *NoOpTransactionScope
	accounts *fakeAccountRepo
	entries  *fakeEntryRepo
}

func newTestEnv() *testEnv {
	accounts := newFakeAccountRepo()
	entries := newFakeEntryRepo()
	return &testEnv{
		scope:    NewNoOpTransactionScope(accounts, entries),
		accounts: accounts,
		entries:  entries,
	}
}
