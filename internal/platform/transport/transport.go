// Package transport wraps model calls with rate limiting, per-call timeouts
// and exponential backoff. Both model providers share it.
package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/phrazzld/tutorgen/internal/generation"
)

// Defaults applied when a Policy field is zero.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
	DefaultTimeout    = 120 * time.Second
)

// Policy configures a Caller.
type Policy struct {
	// MaxRetries is the number of retries after the first call.
	MaxRetries int
	// BaseDelay is the first backoff; each retry doubles it, with jitter.
	BaseDelay time.Duration
	// RequestsPerMinute caps the call rate. Zero disables limiting.
	RequestsPerMinute int
	// Timeout bounds each individual call.
	Timeout time.Duration
}

// Caller runs model calls under a Policy. It is safe for concurrent use.
type Caller struct {
	policy  Policy
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewCaller returns a Caller for p.
func NewCaller(p Policy, logger *slog.Logger) *Caller {
	if p.MaxRetries < 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Caller{policy: p, logger: logger}
	if p.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(p.RequestsPerMinute)), 1)
	}
	return c
}

// Policy returns the effective policy.
func (c *Caller) Policy() Policy { return c.policy }

// Do calls fn until it succeeds, returns an error that does not wrap
// generation.ErrTransientFailure, or retries run out. maxRetries overrides
// the policy when positive.
func (c *Caller) Do(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) error {
	if maxRetries <= 0 {
		maxRetries = c.policy.MaxRetries
	}
	b := retry.WithMaxRetries(uint64(maxRetries),
		retry.WithJitterPercent(20, retry.NewExponential(c.policy.BaseDelay)))

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, generation.ErrTransientFailure) {
			c.logger.WarnContext(ctx, "model call failed, will retry",
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
