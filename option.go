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

	"github.com/offlinekit/swrcache/codec"
	"github.com/offlinekit/swrcache/log"
	"github.com/offlinekit/swrcache/otel"
)

// Option defines a configuration option that can be applied to a Config.
//
// Implementations of this interface modify the configuration when applied.
type Option interface {
	// Apply applies the configuration option to the given Config instance.
	Apply(config *Config)
}

// enforce compilation error if OptionFunc does not implement Option
var _ Option = OptionFunc(nil)

// OptionFunc is a function type that implements the Option interface.
//
// It allows functions to be used as configuration options for Config.
type OptionFunc func(config *Config)

// Apply applies the OptionFunc to the given Config.
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// WithNamespace configures the config to use a custom key namespace.
//
// The namespace scopes this store's keys within the shared backend: Clear
// and Stats only see keys under it.
//
// Usage:
//
//	config := NewConfig(backend, WithNamespace("planner"))
func WithNamespace(namespace string) Option {
	return OptionFunc(func(config *Config) {
		config.namespace = namespace
	})
}

// WithCapacity configures the config to use a custom storage budget in bytes.
//
// The budget is a soft target enforced by eviction before writes.
//
// Usage:
//
//	config := NewConfig(backend, WithCapacity(8*size.MB))
func WithCapacity(capacity int64) Option {
	return OptionFunc(func(config *Config) {
		config.capacity = capacity
	})
}

// WithCleanupThreshold configures the capacity fraction at which a pending
// write triggers reclamation. Values are in (0, 1].
//
// Usage:
//
//	config := NewConfig(backend, WithCleanupThreshold(0.9))
func WithCleanupThreshold(threshold float64) Option {
	return OptionFunc(func(config *Config) {
		config.cleanupThreshold = threshold
	})
}

// WithSweepInterval configures the cadence of the periodic expiry sweep.
//
// Usage:
//
//	config := NewConfig(backend, WithSweepInterval(time.Minute))
func WithSweepInterval(interval time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.sweepInterval = interval
	})
}

// WithCodec configures the codec applied to payloads written with
// compression enabled.
//
// Usage:
//
//	zstd, _ := codec.Zstd()
//	config := NewConfig(backend, WithCodec(zstd))
func WithCodec(c codec.Codec) Option {
	return OptionFunc(func(config *Config) {
		config.codec = c
	})
}

// WithLogger configures the config to use a custom logger.
//
// Usage:
//
//	config := NewConfig(backend, WithLogger(myLogger))
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *Config) {
		config.logger = logger
	})
}

// WithTracing enables OpenTelemetry spans for store and query operations.
//
// Usage:
//
//	config := NewConfig(backend, WithTracing(otel.NewTracerConfig()))
func WithTracing(traceConfig *otel.TracerConfig) Option {
	return OptionFunc(func(config *Config) {
		config.traceConfig = traceConfig
	})
}

// WithMetrics enables OpenTelemetry metrics for store and query operations.
//
// Usage:
//
//	config := NewConfig(backend, WithMetrics(otel.NewMetricConfig()))
func WithMetrics(metricConfig *otel.MetricConfig) Option {
	return OptionFunc(func(config *Config) {
		config.metricConfig = metricConfig
	})
}
