package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"libraryhub/internal/core/domain"
)

const (
	conflictMaxAttempts  = 3
	conflictBaseDelay    = 10 * time.Millisecond
	conflictJitterFactor = 0.3
)

// retryOnConflict runs fn until it stops failing with domain.ErrConcurrentUpdate.
// Schedule: 0 ms, 10 ms, 20 ms plus up to 30% jitter.
// Any other error fails fast.
func retryOnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < conflictMaxAttempts; attempt++ {
		if attempt > 0 {
			delay := conflictBaseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * conflictJitterFactor //nolint:gosec
			select {
			case <-time.After(delay + time.Duration(jitter)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, domain.ErrConcurrentUpdate) {
			return lastErr
		}
	}

	return lastErr
}
