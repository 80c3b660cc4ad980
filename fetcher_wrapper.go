// MIT License
//
// Copyright (c) 2025-2026 The swrcache authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package swrcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"golang.org/x/time/rate"

	"github.com/offlinekit/swrcache/internal/validation"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// fetchPolicy bundles the optional protections applied around a Fetcher.
type fetchPolicy struct {
	// RateLimit configures fetch rate limiting. Nil disables rate limiting.
	RateLimit *RateLimitConfig
	// CircuitBreaker configures circuit breaking. Nil disables it.
	CircuitBreaker *CircuitBreakerConfig
	// Retry configures bounded retrying of failed fetches. Nil disables it.
	Retry *RetryConfig
}

func newFetchPolicy(rateLimit *RateLimitConfig, circuitBreaker *CircuitBreakerConfig, retryConfig *RetryConfig) *fetchPolicy {
	if rateLimit == nil && circuitBreaker == nil && retryConfig == nil {
		return nil
	}
	return &fetchPolicy{
		RateLimit:      rateLimit,
		CircuitBreaker: circuitBreaker,
		Retry:          retryConfig,
	}
}

// Validate validates the protection configuration.
func (x *fetchPolicy) Validate() error {
	if x == nil {
		return nil
	}
	chain := validation.New(validation.AllErrors())
	if x.RateLimit != nil {
		chain = chain.
			AddAssertion(x.RateLimit.RequestsPerSecond > 0, "rateLimit.requestsPerSecond is invalid").
			AddAssertion(x.RateLimit.Burst >= 0, "rateLimit.burst is invalid").
			AddAssertion(x.RateLimit.WaitTimeout >= 0, "rateLimit.waitTimeout is invalid")
	}
	if x.CircuitBreaker != nil {
		chain = chain.
			AddAssertion(x.CircuitBreaker.FailureThreshold > 0, "circuitBreaker.failureThreshold is invalid").
			AddAssertion(x.CircuitBreaker.ResetTimeout > 0, "circuitBreaker.resetTimeout is invalid")
	}
	if x.Retry != nil {
		chain = chain.
			AddAssertion(x.Retry.MaxAttempts > 0, "retry.maxAttempts is invalid").
			AddAssertion(x.Retry.Interval > 0, "retry.interval is invalid")
	}
	return chain.Validate()
}

// applyFetchPolicy wraps source with the configured protections.
func applyFetchPolicy[T any](policy *fetchPolicy, source Fetcher[T]) Fetcher[T] {
	if policy == nil || source == nil {
		return source
	}

	limiter := newFetchRateLimiter(policy.RateLimit)
	breaker := newCircuitBreaker(policy.CircuitBreaker)
	retryConfig := policy.Retry
	if retryConfig != nil && retryConfig.MaxAttempts <= 1 {
		retryConfig = nil
	}
	if limiter == nil && breaker == nil && retryConfig == nil {
		return source
	}

	return &fetcherWrapper[T]{
		source:  source,
		limiter: limiter,
		breaker: breaker,
		retry:   retryConfig,
	}
}

type fetchRateLimiter struct {
	limiter     *rate.Limiter
	waitTimeout time.Duration
}

func newFetchRateLimiter(cfg *RateLimitConfig) *fetchRateLimiter {
	if cfg == nil || cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 0 {
		burst = 0
	}
	return &fetchRateLimiter{
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		waitTimeout: cfg.WaitTimeout,
	}
}

func (r *fetchRateLimiter) Wait(ctx context.Context) error {
	if r.waitTimeout == 0 {
		if !r.limiter.Allow() {
			return ErrFetcherRateLimited
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.waitTimeout)
	defer cancel()
	if err := r.limiter.Wait(waitCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		if strings.Contains(err.Error(), "would exceed context deadline") {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}

func newFetchRetrier(cfg *RetryConfig) *retry.Retrier {
	if cfg == nil || cfg.MaxAttempts <= 1 {
		return nil
	}
	return retry.NewRetrier(cfg.MaxAttempts, cfg.Interval, cfg.Interval)
}

// circuitBreaker implements a consecutive-failure circuit breaker.
//
// Algorithm:
//   - Closed: fetches are allowed. After FailureThreshold consecutive
//     failures, the breaker opens and rejects all fetches.
//   - Open: fetches are rejected until ResetTimeout elapses.
//   - Half-open: exactly one fetch is allowed. Success closes the breaker,
//     failure re-opens it.
//
// The implementation is concurrency-safe and guarantees at most one
// in-flight fetch while half-open.
type circuitBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failures         int
	threshold        int
	resetTimeout     time.Duration
	openedAt         time.Time
	halfOpenInflight bool
}

func newCircuitBreaker(cfg *CircuitBreakerConfig) *circuitBreaker {
	if cfg == nil || cfg.FailureThreshold <= 0 || cfg.ResetTimeout <= 0 {
		return nil
	}
	return &circuitBreaker{
		state:        breakerClosed,
		threshold:    cfg.FailureThreshold,
		resetTimeout: cfg.ResetTimeout,
	}
}

func (c *circuitBreaker) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(c.openedAt) >= c.resetTimeout {
			c.state = breakerHalfOpen
			if c.halfOpenInflight {
				return false
			}
			c.halfOpenInflight = true
			return true
		}
		return false
	case breakerHalfOpen:
		if c.halfOpenInflight {
			return false
		}
		c.halfOpenInflight = true
		return true
	default:
		return false
	}
}

func (c *circuitBreaker) OnSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case breakerHalfOpen:
		c.state = breakerClosed
		c.failures = 0
		c.halfOpenInflight = false
	case breakerClosed:
		c.failures = 0
	}
}

func (c *circuitBreaker) OnFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case breakerHalfOpen:
		c.state = breakerOpen
		c.openedAt = time.Now()
		c.halfOpenInflight = false
	case breakerClosed:
		c.failures++
		if c.failures >= c.threshold {
			c.state = breakerOpen
			c.openedAt = time.Now()
		}
	}
}

func (c *circuitBreaker) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == breakerHalfOpen {
		c.halfOpenInflight = false
	}
}

func (r RateLimitConfig) String() string {
	return fmt.Sprintf("rateLimit[rps=%.2f, burst=%d]", r.RequestsPerSecond, r.Burst)
}

type fetcherWrapper[T any] struct {
	source  Fetcher[T]
	limiter *fetchRateLimiter
	breaker *circuitBreaker
	retry   *RetryConfig
}

func (x *fetcherWrapper[T]) Fetch(ctx context.Context) (T, error) {
	var zero T

	if x.breaker != nil && !x.breaker.Allow() {
		return zero, ErrFetcherCircuitOpen
	}

	if x.limiter != nil {
		if err := x.limiter.Wait(ctx); err != nil {
			if x.breaker != nil {
				x.breaker.Abort()
			}
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return zero, err
			}
			return zero, ErrFetcherRateLimited
		}
	}

	value, err := x.fetchOnce(ctx)
	if x.breaker != nil {
		if err != nil {
			x.breaker.OnFailure()
		} else {
			x.breaker.OnSuccess()
		}
	}

	return value, err
}

func (x *fetcherWrapper[T]) fetchOnce(ctx context.Context) (T, error) {
	retrier := newFetchRetrier(x.retry)
	if retrier == nil {
		return x.source.Fetch(ctx)
	}

	var value T
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		fetched, fetchErr := x.source.Fetch(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		value = fetched
		return nil
	})
	return value, err
}
