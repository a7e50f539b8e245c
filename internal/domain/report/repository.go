package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MovementFilter scopes a stock extract query. Empty slices mean no filter.
type MovementFilter struct {
	StartDate    time.Time
	EndDate      time.Time
	WarehouseIDs []uuid.UUID
	CategoryIDs  []uuid.UUID
}

// MovementRepository produces per-(warehouse, material) movement rows from
// the stock entry log: the opening fold before the window plus per-kind sums
// inside it, joined with material, category and warehouse names.
type MovementRepository interface {
	FindMovements(ctx context.Context, filter MovementFilter) ([]MovementRow, error)
}
