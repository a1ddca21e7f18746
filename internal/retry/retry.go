// Package retry wraps external calls with a bounded exponential-backoff
// budget and a per-attempt timeout.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/review-pilot/internal/core"
)

// Policy bounds one wrapped call.
type Policy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	PerAttemptTimeout time.Duration
}

// DefaultPolicy returns the pipeline defaults: three attempts, one second
// initial delay doubling per attempt, thirty seconds per attempt.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		PerAttemptTimeout: 30 * time.Second,
	}
}

// Executor runs external calls under a retry budget.
type Executor struct {
	policy Policy
	logger *slog.Logger
}

// NewExecutor builds an Executor. Zero policy fields fall back to defaults.
func NewExecutor(policy Policy, logger *slog.Logger) *Executor {
	def := DefaultPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = def.InitialDelay
	}
	if policy.PerAttemptTimeout <= 0 {
		policy.PerAttemptTimeout = def.PerAttemptTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{policy: policy, logger: logger}
}

// Do runs fn until it succeeds or the budget is spent. Transient failures are
// retried with a doubling delay; auth, not-found, and validation failures
// surface immediately. A rate-limit reset hint raises the next wait to at
// least the hint without disturbing the doubling schedule.
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := e.policy.InitialDelay

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.policy.PerAttemptTimeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		// A shutdown abandons the call after the current attempt; do not
		// start another one.
		if ctx.Err() != nil {
			return fmt.Errorf("%s aborted: %w", op, lastErr)
		}

		if !retryable(err) {
			return err
		}
		if attempt == e.policy.MaxAttempts {
			break
		}

		wait := delay
		if hint, ok := core.RetryAfterHint(err); ok && hint > wait {
			wait = hint
		}
		e.logger.Warn("transient failure, retrying",
			"op", op,
			"attempt", attempt,
			"max_attempts", e.policy.MaxAttempts,
			"delay", wait,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", op, ctx.Err())
		case <-time.After(wait):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, e.policy.MaxAttempts, lastErr)
}

// retryable treats typed transient failures and per-attempt timeouts as worth
// another try. Everything else surfaces to the caller untouched.
func retryable(err error) bool {
	if core.IsTransient(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
