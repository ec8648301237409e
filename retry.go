package tradelog

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RetryPolicy bounds the retries of calls to external services.
type RetryPolicy struct {
	MaxRetries      uint64        // retries after the first attempt
	InitialInterval time.Duration // delay before the first retry, doubled each time
}

// DefaultRetryPolicy retries 3 times, after 500ms, 1s and 2s.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, InitialInterval: 500 * time.Millisecond}

func (p RetryPolicy) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0 // bounded by MaxRetries instead
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// Retry calls op until it succeeds, returns a non retryable error, or the
// policy is exhausted. It fails closed: the last error is returned.
//
// Authentication and parse errors are never retried.
func Retry[T any](ctx context.Context, p RetryPolicy, log zerolog.Logger, what string, op func(context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		v, err := op(ctx)
		if err == nil {
			result = v
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.backoff(ctx), func(err error, next time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("next", next).Msgf("%s failed, retrying", what)
	})
	return result, err
}

func retryable(err error) bool {
	var (
		auth  *AuthenticationError
		parse *ParseError
	)
	switch {
	case errors.As(err, &auth), errors.As(err, &parse):
		return false
	case errors.Is(err, ErrNoPrice), errors.Is(err, context.Canceled):
		return false
	}
	return true
}
