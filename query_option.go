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
	"time"

	"github.com/offlinekit/swrcache/connectivity"
	"github.com/offlinekit/swrcache/log"
	"github.com/offlinekit/swrcache/otel"
	"github.com/offlinekit/swrcache/warmup"
)

// DefaultQueryTTL is the freshness window applied when no TTL option is
// given.
const DefaultQueryTTL = 5 * time.Minute

// QueryOption customizes a query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	ttl             time.Duration
	version         string
	compress        bool
	enableOffline   bool
	refreshInterval time.Duration
	monitor         connectivity.Monitor
	logger          log.Logger
	rateLimit       *RateLimitConfig
	circuitBreaker  *CircuitBreakerConfig
	retry           *RetryConfig
	warmer          *warmup.Warmer
	tracker         *warmup.Tracker
	traceConfig     *otel.TracerConfig
	metricConfig    *otel.MetricConfig
}

func newQueryConfig(opts []QueryOption) queryConfig {
	config := queryConfig{
		ttl:           DefaultQueryTTL,
		enableOffline: true,
		monitor:       connectivity.NewStatic(true),
		logger:        log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

// WithQueryTTL sets the cache freshness window for values the query writes
// through. Zero disables time-based expiration.
func WithQueryTTL(ttl time.Duration) QueryOption {
	return func(config *queryConfig) {
		config.ttl = ttl
	}
}

// WithQueryVersion tags written entries with a schema version and requests
// that version on reads. Changing the tag invalidates previously cached
// values without a cache wipe.
func WithQueryVersion(version string) QueryOption {
	return func(config *queryConfig) {
		config.version = version
	}
}

// WithQueryCompression compresses values through the store's codec before
// storage. Worth enabling for large or static payloads.
func WithQueryCompression() QueryOption {
	return func(config *queryConfig) {
		config.compress = true
	}
}

// WithOfflineDisabled stops the query from serving stale cached data while
// offline. Offline reads then attempt the fetch and surface its error.
func WithOfflineDisabled() QueryOption {
	return func(config *queryConfig) {
		config.enableOffline = false
	}
}

// WithRefreshInterval re-fetches in the background on the given cadence
// while the query is started. Off by default.
func WithRefreshInterval(interval time.Duration) QueryOption {
	return func(config *queryConfig) {
		config.refreshInterval = interval
	}
}

// WithMonitor subscribes the query to the given connectivity signal.
// Without it the query assumes it is always online.
func WithMonitor(monitor connectivity.Monitor) QueryOption {
	return func(config *queryConfig) {
		config.monitor = monitor
	}
}

// WithQueryLogger sets the query diagnostics logger.
func WithQueryLogger(logger log.Logger) QueryOption {
	return func(config *queryConfig) {
		config.logger = logger
	}
}

// WithFetchRateLimit bounds the rate of fetches issued by the query.
func WithFetchRateLimit(cfg RateLimitConfig) QueryOption {
	return func(config *queryConfig) {
		config.rateLimit = &cfg
	}
}

// WithFetchCircuitBreaker opens the fetch path after consecutive failures.
func WithFetchCircuitBreaker(cfg CircuitBreakerConfig) QueryOption {
	return func(config *queryConfig) {
		config.circuitBreaker = &cfg
	}
}

// WithFetchRetry retries failed fetches before reporting the error.
func WithFetchRetry(cfg RetryConfig) QueryOption {
	return func(config *queryConfig) {
		config.retry = &cfg
	}
}

// WithWarmer registers the query with a warmup.Warmer so its key can be
// prefetched on demand, typically after connectivity returns.
func WithWarmer(warmer *warmup.Warmer) QueryOption {
	return func(config *queryConfig) {
		config.warmer = warmer
	}
}

// WithTracker records cache hits in a warmup.Tracker, feeding hot-key
// selection.
func WithTracker(tracker *warmup.Tracker) QueryOption {
	return func(config *queryConfig) {
		config.tracker = tracker
	}
}

// WithQueryTracing enables OpenTelemetry spans for the query's fetches.
func WithQueryTracing(traceConfig *otel.TracerConfig) QueryOption {
	return func(config *queryConfig) {
		config.traceConfig = traceConfig
	}
}

// WithQueryMetrics enables OpenTelemetry metrics for the query's fetches.
func WithQueryMetrics(metricConfig *otel.MetricConfig) QueryOption {
	return func(config *queryConfig) {
		config.metricConfig = metricConfig
	}
}
