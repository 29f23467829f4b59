// Package repository holds store-agnostic helpers shared by the ledger store
// backends.
package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Classifier reports whether a store error is a transient conflict after
// which the whole transaction may be re-run.
type Classifier func(error) bool

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	isRetryable     Classifier
	logger          zerolog.Logger
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

// NewRetrier creates a retrier with default settings that retries errors
// accepted by isRetryable at most maxRetries times.
func NewRetrier(isRetryable Classifier, maxRetries int, logger zerolog.Logger) *Retrier {
	return &Retrier{
		isRetryable:     isRetryable,
		logger:          logger,
		maxRetries:      maxRetries,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
	}
}

// Retry executes an operation with exponential backoff on retryable errors.
// The operation must be a complete transaction: a retryable failure means
// it was rolled back and left nothing behind.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if r.isRetryable == nil || !r.isRetryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("retryable store error, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}
