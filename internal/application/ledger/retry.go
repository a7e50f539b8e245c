package ledger

import (
	"context"
	"errors"

	"github.com/restobo/backend/internal/domain/shared"
)

const defaultMaxRetries = 3

// withConflictRetry re-runs fn when it fails with an optimistic-lock
// conflict, up to maxRetries attempts. Any other error, and a conflict on
// the final attempt, is returned to the caller.
func withConflictRetry(ctx context.Context, maxRetries int, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn()
		if err == nil {
			return nil
		}
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != shared.ErrConcurrencyConflict.Code {
			return err
		}
	}
	return err
}
