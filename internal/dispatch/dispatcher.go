// Package dispatch sends response intents back to provider APIs with a
// shared retry policy, per-platform rate limiting and circuit breaking.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"triggerd/internal/model"
	"triggerd/internal/observability"
	"triggerd/internal/trigger"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 10 * time.Second
	backoffFactor      = 2
)

// DispatchError reports an outbound call that failed permanently or
// exhausted its retries.
type DispatchError struct {
	Platform   string
	ResourceID string
	Intent     model.IntentKind
	Attempts   int
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s to %s/%s failed after %d attempt(s): %v",
		e.Intent, e.Platform, e.ResourceID, e.Attempts, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Options tunes the dispatcher. Zero values take the defaults above.
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// RatePerMinute caps outbound calls per platform; zero disables the
	// limiter.
	RatePerMinute int
	Metrics       *observability.WebhookMetrics
}

// Dispatcher resolves the responder for a platform from the frozen snapshot
// and drives the retry loop around it. Safe for concurrent use.
type Dispatcher struct {
	snapshot    *trigger.Snapshot
	logger      logr.Logger
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	ratePerMin  int
	metrics     *observability.WebhookMetrics

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewDispatcher(snapshot *trigger.Snapshot, logger logr.Logger, opts Options) *Dispatcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	return &Dispatcher{
		snapshot:    snapshot,
		logger:      logger,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		maxDelay:    opts.MaxDelay,
		ratePerMin:  opts.RatePerMinute,
		metrics:     opts.Metrics,
		limiters:    map[string]*rate.Limiter{},
		breakers:    map[string]*gobreaker.CircuitBreaker[any]{},
	}
}

// Send delivers one intent to the provider owning resourceID. It returns nil
// on success and a *DispatchError otherwise; the caller decides whether to
// escalate. Send never affects inbound request handling.
func (d *Dispatcher) Send(ctx context.Context, platform, resourceID string, intent model.ResponseIntent) error {
	adapter, err := d.snapshot.Adapter(platform)
	if err != nil {
		return &DispatchError{Platform: platform, ResourceID: resourceID, Intent: intent.Kind, Err: err}
	}
	responder := adapter.Responder()
	if responder == nil {
		return &DispatchError{
			Platform: platform, ResourceID: resourceID, Intent: intent.Kind,
			Err: fmt.Errorf("no api_token configured for %s", platform),
		}
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		attempts = attempt
		if limiter := d.limiterFor(platform); limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return &DispatchError{Platform: platform, ResourceID: resourceID, Intent: intent.Kind, Attempts: attempt, Err: err}
			}
		}

		_, err := d.breakerFor(platform).Execute(func() (any, error) {
			return nil, responder.Respond(ctx, resourceID, intent)
		})
		if err == nil {
			if attempt > 1 {
				d.logger.Info("dispatch succeeded after retry",
					"platform", platform, "resource_id", resourceID, "intent", string(intent.Kind), "attempt", attempt)
			}
			d.metrics.ObserveDispatch(platform, "success")
			return nil
		}
		lastErr = err

		retryable, wait := d.classify(err, attempt)
		if !retryable || attempt == d.maxAttempts {
			break
		}
		d.logger.V(1).Info("dispatch attempt failed, backing off",
			"platform", platform, "resource_id", resourceID, "intent", string(intent.Kind),
			"attempt", attempt, "wait", wait.String(), "error", err.Error())
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return &DispatchError{Platform: platform, ResourceID: resourceID, Intent: intent.Kind, Attempts: attempt, Err: ctx.Err()}
		}
	}

	dispatchErr := &DispatchError{
		Platform: platform, ResourceID: resourceID, Intent: intent.Kind,
		Attempts: attempts, Err: lastErr,
	}
	d.metrics.ObserveDispatch(platform, "failure")
	d.logger.Error(dispatchErr, "dispatch failed",
		"platform", platform, "resource_id", resourceID, "intent", string(intent.Kind))
	return dispatchErr
}

// classify decides whether err warrants another attempt and how long to wait
// first. 5xx and transport errors back off exponentially; 429 honors the
// provider's Retry-After when present; other 4xx are permanent.
func (d *Dispatcher) classify(err error, attempt int) (bool, time.Duration) {
	var statusErr *trigger.HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Status == 429:
			if statusErr.RetryAfter > 0 {
				return true, statusErr.RetryAfter
			}
			return true, d.backoff(attempt)
		case statusErr.Status >= 500:
			return true, d.backoff(attempt)
		default:
			return false, 0
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, 0
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true, d.backoff(attempt)
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return true, d.backoff(attempt)
	}
	return false, 0
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	delay := d.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= backoffFactor
		if delay >= d.maxDelay {
			return d.maxDelay
		}
	}
	if delay > d.maxDelay {
		return d.maxDelay
	}
	return delay
}

func (d *Dispatcher) limiterFor(platform string) *rate.Limiter {
	if d.ratePerMin <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	limiter, ok := d.limiters[platform]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(d.ratePerMin)/60.0), d.ratePerMin)
		d.limiters[platform] = limiter
	}
	return limiter
}

func (d *Dispatcher) breakerFor(platform string) *gobreaker.CircuitBreaker[any] {
	d.mu.Lock()
	defer d.mu.Unlock()
	breaker, ok := d.breakers[platform]
	if !ok {
		breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name: "dispatch-" + platform,
		})
		d.breakers[platform] = breaker
	}
	return breaker
}
