package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/feelio/internal/logger"
)

// RetryProvider retries transient failures with capped exponential backoff.
// A reply that fails schema validation is retried once, since a second
// sample usually parses.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    *logger.Logger

	// sleep waits for d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps p. MaxAttempts below one means a single try.
func WithRetry(p Provider, cfg RetryConfig, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &RetryProvider{inner: p, config: cfg, log: log, sleep: sleepCtx}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	span := trace.SpanFromContext(ctx)
	sawInvalid := false

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var invalid *ErrInvalidResponse
		isInvalid := errors.As(err, &invalid)
		switch {
		case !IsTransient(err), isInvalid && sawInvalid:
			return nil, err
		case attempt >= r.config.MaxAttempts:
			r.log.Warn("llm request failed after retries", "attempts", attempt, "error", err)
			return nil, err
		}
		sawInvalid = sawInvalid || isInvalid

		wait := r.backoff(attempt-1, err)
		r.log.Debug("retrying llm request", "attempt", attempt, "wait", wait, "error", err)
		span.AddEvent("llm.retry", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("wait", wait.String()),
		))
		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is RetryAfter when the vendor sent one, else
// InitialWait*Multiplier^n capped at MaxWait with 20% jitter either way.
func (r *RetryProvider) backoff(n int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	base := min(float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(n)), float64(r.config.MaxWait))
	jitter := base * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(base+jitter, 0))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TimeoutProvider bounds each Generate call, retries included.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider with a per-call deadline.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
