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
	"github.com/offlinekit/swrcache/internal/size"
	"github.com/offlinekit/swrcache/internal/validation"
	"github.com/offlinekit/swrcache/log"
	"github.com/offlinekit/swrcache/otel"
	"github.com/offlinekit/swrcache/storage"
)

const (
	// DefaultNamespace prefixes every record the store writes to its
	// backend. Clear removes keys under this prefix and nothing else.
	DefaultNamespace = "swrcache"

	// DefaultCapacity is the storage budget for one store. It deliberately
	// sits below typical origin quotas to leave headroom for other writers
	// sharing the backend.
	DefaultCapacity = 9 * size.MB / 2

	// DefaultCleanupThreshold is the fraction of the capacity budget at
	// which a pending write triggers an expiry sweep and, if needed,
	// eviction.
	DefaultCleanupThreshold = 0.8

	// DefaultSweepInterval is the cadence of the unconditional background
	// expiry sweep. It bounds the storage held by abandoned expired entries
	// between writes.
	DefaultSweepInterval = 5 * time.Minute
)

// Config defines the cache store configuration.
type Config struct {
	// backend is the byte store records are persisted to. A nil backend
	// puts the store in disabled mode where every operation is a benign
	// no-op, which keeps the store safely constructible in contexts where
	// durable storage is unavailable.
	backend storage.Backend

	// namespace scopes this store's keys within the shared backend.
	namespace string

	// capacity is the storage budget in bytes. It is a soft target
	// enforced by eviction before writes, not a hard limit.
	capacity int64

	// cleanupThreshold is the capacity fraction that triggers reclamation
	// ahead of a write.
	cleanupThreshold float64

	// sweepInterval is the cadence of the periodic expiry sweep.
	sweepInterval time.Duration

	// codec transforms payload bytes before storage when a write requests
	// compression.
	codec codec.Codec

	// logger receives store diagnostics. The store never surfaces its own
	// faults as errors, so the logger is the only place they show up.
	logger log.Logger

	// traceConfig enables OpenTelemetry spans when non-nil.
	traceConfig *otel.TracerConfig

	// metricConfig enables OpenTelemetry metrics when non-nil.
	metricConfig *otel.MetricConfig
}

// enforce compilation error
var _ validation.Validator = (*Config)(nil)

// NewConfig creates a store configuration for the given backend.
//
// Parameters:
//   - backend: The storage backend records are persisted to. May be nil, in
//     which case the store runs in disabled mode.
//   - opts: Optional settings customizing the store behavior.
//
// Returns:
//   - *Config: A pointer to the newly created Config instance.
func NewConfig(backend storage.Backend, opts ...Option) *Config {
	config := &Config{
		backend:          backend,
		namespace:        DefaultNamespace,
		capacity:         DefaultCapacity,
		cleanupThreshold: DefaultCleanupThreshold,
		sweepInterval:    DefaultSweepInterval,
		codec:            codec.Passthrough,
		logger:           log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// Backend returns the storage backend. Nil means the store is disabled.
func (c Config) Backend() storage.Backend {
	return c.backend
}

// Namespace scopes this store's keys within the shared backend.
func (c Config) Namespace() string {
	return c.namespace
}

// Capacity is the storage budget in bytes.
func (c Config) Capacity() int64 {
	return c.capacity
}

// CleanupThreshold is the capacity fraction that triggers reclamation ahead
// of a write.
func (c Config) CleanupThreshold() float64 {
	return c.cleanupThreshold
}

// SweepInterval is the cadence of the periodic expiry sweep.
func (c Config) SweepInterval() time.Duration {
	return c.sweepInterval
}

// Codec transforms payload bytes before storage when a write requests
// compression.
func (c Config) Codec() codec.Codec {
	return c.codec
}

// Logger is the diagnostics logger.
func (c Config) Logger() log.Logger {
	return c.logger
}

// TraceConfig returns the tracing configuration, nil when tracing is off.
func (c Config) TraceConfig() *otel.TracerConfig {
	return c.traceConfig
}

// MetricConfig returns the metrics configuration, nil when metrics are off.
func (c Config) MetricConfig() *otel.MetricConfig {
	return c.metricConfig
}

// Validate validates the store configuration.
func (c Config) Validate() error {
	return validation.
		New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("namespace", c.namespace)).
		AddAssertion(c.capacity > 0, "capacity is invalid").
		AddAssertion(c.cleanupThreshold > 0 && c.cleanupThreshold <= 1, "cleanupThreshold is invalid").
		AddAssertion(c.sweepInterval > 0, "sweepInterval is invalid").
		AddAssertion(c.codec != nil, "codec is required").
		AddAssertion(c.logger != nil, "logger is required").
		Validate()
}
