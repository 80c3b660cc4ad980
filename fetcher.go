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
	"time"
)

// Fetcher produces the authoritative value for a query on cache miss or
// refresh. Implementations typically call a remote API or database.
//
// Fetch must honor ctx cancellation. The query layer never retries a fetch
// on its own unless a RetryConfig is set.
type Fetcher[T any] interface {
	// Fetch returns the current authoritative value.
	Fetch(ctx context.Context) (T, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc[T any] func(ctx context.Context) (T, error)

// Fetch implements Fetcher.
func (f FetcherFunc[T]) Fetch(ctx context.Context) (T, error) {
	return f(ctx)
}

// RateLimitConfig bounds the rate of fetches issued by one query.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained fetch rate.
	RequestsPerSecond float64
	// Burst is the number of fetches allowed to exceed the sustained rate.
	Burst int
	// WaitTimeout is how long a fetch may wait for a token. Zero means
	// fetches never wait: an exhausted limiter rejects immediately.
	WaitTimeout time.Duration
}

// CircuitBreakerConfig opens the fetch path after consecutive failures.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before allowing a
	// probe fetch.
	ResetTimeout time.Duration
}

// RetryConfig retries a failed fetch before reporting the error.
type RetryConfig struct {
	// MaxAttempts bounds the total number of attempts, including the first.
	MaxAttempts int
	// Interval is the delay between attempts.
	Interval time.Duration
}
