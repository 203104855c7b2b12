// Package retry wraps external calls in a bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/voicedoc-backend/internal/config"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// Policy is the backoff applied to one kind of call. Attempt n waits
// BaseDelay * 2^(n-1), capped at MaxDelay, spread by ±Jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64

	// OnRetry, if set, is called before each wait.
	OnRetry func(err error, wait time.Duration)
}

// FromConfig builds a Policy from the retry config section.
func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		Jitter:      cfg.Jitter,
	}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent or already
// carries domain.ErrPermanent.
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p) || errors.Is(err, domain.ErrPermanent)
}

// Do calls fn until it succeeds, returns a permanent error, the context is
// done, or MaxAttempts is reached. Permanent and exhausted failures are
// returned wrapped with domain.ErrPermanent; context errors are returned as is.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	op := func() error {
		err := fn(ctx)
		if err != nil && errors.Is(err, domain.ErrPermanent) {
			err = backoff.Permanent(err)
		}
		last = err
		return err
	}

	var notify backoff.Notify
	if p.OnRetry != nil {
		notify = p.OnRetry
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(p.backOff(), uint64(attempts-1)), ctx), notify)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !IsPermanent(last) {
		return ctxErr
	}
	if errors.Is(err, domain.ErrPermanent) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPermanent, err)
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = p.Jitter
	b.MaxElapsedTime = 0
	return b
}
