package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/phrazzld/tutorgen/internal/quota"
	"github.com/phrazzld/tutorgen/internal/validate"
)

// Session defaults.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
)

// Template variables set by the controller on every attempt.
const (
	VarPreviousItems = "previous_items"
	VarMissing       = "missing"
	VarAttempt       = "attempt"
)

// noPreviousItems is rendered when there is nothing to avoid repeating.
const noPreviousItems = "None (first generation attempt)"

// State is the terminal state of a session.
type State string

// Terminal states.
const (
	// StateSuccess means every required bucket is full.
	StateSuccess State = "success"
	// StateExhausted means the session stopped with a deficit. Its items are
	// a partial result, not an error.
	StateExhausted State = "exhausted"
)

// Record is a generated item the controller can count, number and list.
type Record interface {
	quota.Item
	// Label is the text shown to the model to avoid duplicates.
	Label() string
}

// Plan describes one quota-driven session.
type Plan[T Record] struct {
	// Name identifies the session in logs.
	Name string
	// Quota is the set of buckets to fill.
	Quota quota.Quota
	// Prompt is the text/template source for every attempt.
	Prompt string
	// Variables are passed to the template alongside the controller's own.
	Variables map[string]any
	// PriorItems lists previously generated items, usually from a registry.
	PriorItems string
	MaxTokens  int
	MaxRetries int
	Images     [][]byte
	// Parse extracts records from a response.
	Parse func(text string) []T
	// Validate rejects malformed records. Nil accepts everything parsed.
	Validate func(T) validate.Result
}

// Outcome is the result of a session.
type Outcome[T Record] struct {
	State    State
	Items    []T
	Attempts int
	Deficit  quota.Deficit
	Overflow int
	Counts   map[string]int
}

// Controller runs generation sessions against a Generator.
// It is safe for concurrent use; each session owns its own accumulator.
type Controller struct {
	gen         Generator
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMaxAttempts sets the attempt budget per session.
func WithMaxAttempts(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// NewController creates a Controller. A nil logger discards output.
func NewController(gen Generator, logger *slog.Logger, opts ...ControllerOption) (*Controller, error) {
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Controller{
		gen:         gen,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      logger.With("component", "generation_controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generator returns the underlying generator.
func (c *Controller) Generator() Generator { return c.gen }

// Run executes plan until the quota is met, the session overgenerates, or the
// attempt budget is spent. It returns an error only for faults: an invalid
// plan or prompt, or cancellation of ctx. A model failure on one attempt is
// logged and counted against the budget.
func Run[T Record](ctx context.Context, c *Controller, plan Plan[T]) (Outcome[T], error) {
	if plan.Parse == nil {
		return Outcome[T]{}, fmt.Errorf("%w: plan %q has no parser", ErrInvalidConfig, plan.Name)
	}
	if plan.Quota.Target() == 0 {
		return Outcome[T]{}, fmt.Errorf("%w: plan %q has an empty quota", ErrInvalidConfig, plan.Name)
	}

	log := c.logger.With("session", plan.Name)
	acc := quota.NewAccumulator[T](plan.Quota)
	seeded := false
	target := plan.Quota.Target()

	outcome := func(state State, attempts int) Outcome[T] {
		return Outcome[T]{
			State:    state,
			Items:    acc.Items(),
			Attempts: attempts,
			Deficit:  acc.Deficit(),
			Overflow: acc.Overflow(),
			Counts:   acc.Counts(),
		}
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		alog := log.With("attempt", attempt)
		if attempt > 1 {
			if err := sleep(ctx, c.retryDelay); err != nil {
				return outcome(StateExhausted, attempt-1), err
			}
		}

		vars := make(map[string]any, len(plan.Variables)+3)
		maps.Copy(vars, plan.Variables)
		vars[VarPreviousItems] = previousItems(plan.PriorItems, acc.Items())
		vars[VarMissing] = acc.Deficit().String()
		vars[VarAttempt] = attempt

		resp, err := c.gen.Generate(ctx, Request{
			Prompt:     plan.Prompt,
			Variables:  vars,
			MaxTokens:  plan.MaxTokens,
			MaxRetries: plan.MaxRetries,
			Images:     plan.Images,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidPrompt) {
				return outcome(StateExhausted, attempt), err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcome(StateExhausted, attempt), ctxErr
			}
			alog.Warn("generation attempt failed", "error", err)
			continue
		}

		batch := accept(alog, plan, plan.Parse(resp), attempt)
		if len(batch) == 0 {
			alog.Warn("generation attempt produced no valid records",
				"response_snippet", snippet(resp, 200))
			continue
		}

		if !seeded {
			stats := acc.Seed(batch)
			seeded = true
			logMerge(alog, "seeded accumulator", stats)
		} else if acc.Overflowed() {
			alog.Warn("skipping merge after overgeneration",
				"overflow", acc.Overflow(),
				"deficit", acc.Deficit().String())
		} else {
			before := acc.Deficit()
			stats := acc.Merge(batch)
			logMerge(alog.With("deficit_before", before.String()), "merged records", stats)
		}

		deficit := acc.Deficit()
		if deficit.Empty() {
			alog.Info("quota met", "items", acc.Len())
			return outcome(StateSuccess, attempt), nil
		}
		if acc.Len()+acc.Overflow() >= target {
			alog.Warn("stopping with deficit after overgeneration",
				"items", acc.Len(),
				"overflow", acc.Overflow(),
				"deficit", deficit.String())
			return outcome(StateExhausted, attempt), nil
		}
		alog.Info("quota not met", "deficit", deficit.String())
	}

	log.Warn("attempts exhausted",
		"attempts", c.maxAttempts,
		"items", acc.Len(),
		"deficit", acc.Deficit().String())
	return outcome(StateExhausted, c.maxAttempts), nil
}

// accept drops records rejected by plan.Validate, logging each rejection.
func accept[T Record](log *slog.Logger, plan Plan[T], records []T, attempt int) []T {
	if plan.Validate == nil {
		return records
	}
	out := records[:0:0]
	for _, r := range records {
		res := plan.Validate(r)
		if !res.Valid {
			log.Warn("discarded invalid record",
				"kind", r.Kind(),
				"attempt", attempt,
				"reason", res.Reason)
			continue
		}
		out = append(out, r)
	}
	return out
}

func logMerge(log *slog.Logger, msg string, stats quota.MergeStats) {
	attrs := []any{"added", stats.TotalAdded()}
	for bucket, n := range stats.Overflow {
		attrs = append(attrs, slog.Group("overflow", "bucket", bucket, "count", n))
	}
	if stats.Unmatched > 0 {
		attrs = append(attrs, "unmatched", stats.Unmatched)
	}
	log.Info(msg, attrs...)
}

// previousItems renders prior and accumulated labels as a "- label" list.
func previousItems[T Record](prior string, items []T) string {
	var b strings.Builder
	if p := strings.TrimSpace(prior); p != "" && !strings.HasPrefix(p, "None") {
		b.WriteString(p)
	}
	for _, item := range items {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item.Label())
	}
	if b.Len() == 0 {
		return noPreviousItems
	}
	return b.String()
}

func snippet(text string, n int) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
