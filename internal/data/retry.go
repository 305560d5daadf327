package data

import (
	"context"
	"time"
)

// retryBaseDelay is the first backoff step; each attempt doubles it.
const retryBaseDelay = 500 * time.Millisecond

// DefaultMaxRetries bounds the retries for single-row remote writes.
const DefaultMaxRetries = 2

// WithRetry invokes fn up to maxRetries+1 times, sleeping 500ms*2^attempt
// between attempts. The last error is returned once attempts are exhausted.
// Only used for idempotent single-row operations; the delete-then-insert
// replace is never retried since a half-applied cycle must not be re-run.
func WithRetry(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt < maxRetries {
			select {
			case <-time.After(retryBaseDelay << attempt):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
