package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// OncePlan describes a call that must yield exactly one record.
type OncePlan[T any] struct {
	Name       string
	Prompt     string
	Variables  map[string]any
	MaxTokens  int
	MaxRetries int
	Images     [][]byte
	// Attempts overrides the controller's attempt budget when positive.
	Attempts int
	// Parse extracts the record, reporting false when the response is
	// unusable.
	Parse func(text string) (T, bool)
}

// Once calls the generator until Parse accepts a response, pausing the
// controller's retry delay between attempts. It fails with
// ErrInvalidResponse when every attempt produced output that would not
// parse, and with ErrGenerationFailed when the last attempt could not reach
// the model.
func Once[T any](ctx context.Context, c *Controller, plan OncePlan[T]) (T, error) {
	var zero T
	if plan.Parse == nil {
		return zero, fmt.Errorf("%w: plan %q has no parser", ErrInvalidConfig, plan.Name)
	}

	attempts := plan.Attempts
	if attempts <= 0 {
		attempts = c.maxAttempts
	}
	delay := c.retryDelay
	if delay <= 0 {
		delay = time.Nanosecond
	}
	log := c.logger.With("session", plan.Name)

	var (
		record  T
		lastErr error
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := c.gen.Generate(ctx, Request{
			Prompt:     plan.Prompt,
			Variables:  plan.Variables,
			MaxTokens:  plan.MaxTokens,
			MaxRetries: plan.MaxRetries,
			Images:     plan.Images,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidPrompt) {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn("generation attempt failed", "attempt", attempt, "error", err)
			lastErr = err
			return retry.RetryableError(err)
		}

		parsed, ok := plan.Parse(resp)
		if ok {
			record = parsed
			return nil
		}
		lastErr = nil
		log.Warn("response could not be parsed",
			"attempt", attempt,
			"response_snippet", snippet(resp, 200))
		return retry.RetryableError(errUnparsed)
	})

	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, errUnparsed) && lastErr == nil:
		return zero, fmt.Errorf("%w: %s after %d attempts", ErrInvalidResponse, plan.Name, attempt)
	case lastErr != nil && errors.Is(err, lastErr):
		return zero, fmt.Errorf("%w: %s: %w", ErrGenerationFailed, plan.Name, lastErr)
	default:
		return zero, err
	}
}

// errUnparsed marks an attempt whose response Parse rejected.
var errUnparsed = errors.New("response not parsed")
