package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time reconstruction of one (material, warehouse)
// key: quantity in canonical units and weighted-average unit cost.
type Snapshot struct {
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
}

// Replay folds stock entries, already ordered by (OccurredAt, Sequence),
// into a snapshot from zero. It uses the same arithmetic as the incremental
// Apply but performs no floor validation: the entries were validated when
// they were accepted, and recalculation must reproduce history rather than
// re-judge it.
func Replay(entries []StockEntry) Snapshot {
	snap := Snapshot{Quantity: decimal.Zero, AverageCost: decimal.Zero}
	for i := range entries {
		e := &entries[i]
		if e.Kind.IsInbound() {
			snap.AverageCost = WeightedAverage(snap.Quantity, snap.AverageCost, e.Quantity, e.UnitCost)
			snap.Quantity = snap.Quantity.Add(e.Quantity)
		} else {
			snap.Quantity = snap.Quantity.Sub(e.Quantity)
		}
	}
	return snap
}

// ReplayAsOf folds only the entries with OccurredAt on or before the cutoff,
// preserving order. Used for historical snapshots such as report opening
// balances.
func ReplayAsOf(entries []StockEntry, cutoff time.Time) Snapshot {
	upTo := make([]StockEntry, 0, len(entries))
	for i := range entries {
		if !entries[i].OccurredAt.After(cutoff) {
			upTo = append(upTo, entries[i])
		}
	}
	return Replay(upTo)
}
