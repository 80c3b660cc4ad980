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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/offlinekit/swrcache/codec"
	"github.com/offlinekit/swrcache/internal/size"
	"github.com/offlinekit/swrcache/log"
	"github.com/offlinekit/swrcache/otel"
	"github.com/offlinekit/swrcache/storage/memory"
)

func TestConfig(t *testing.T) {
	t.Run("With valid config", func(t *testing.T) {
		config := NewConfig(memory.New())
		require.NoError(t, config.Validate())
	})
	t.Run("With nil backend", func(t *testing.T) {
		// a nil backend is valid: the store runs disabled
		config := NewConfig(nil)
		require.NoError(t, config.Validate())
	})
	t.Run("With empty namespace", func(t *testing.T) {
		config := NewConfig(memory.New(), WithNamespace(""))
		require.ErrorContains(t, config.Validate(), "namespace")
	})
	t.Run("With invalid capacity", func(t *testing.T) {
		config := NewConfig(memory.New(), WithCapacity(0))
		require.ErrorContains(t, config.Validate(), "capacity")
	})
	t.Run("With invalid cleanup threshold", func(t *testing.T) {
		config := NewConfig(memory.New(), WithCleanupThreshold(1.5))
		require.ErrorContains(t, config.Validate(), "cleanupThreshold")
	})
	t.Run("With invalid sweep interval", func(t *testing.T) {
		config := NewConfig(memory.New(), WithSweepInterval(0))
		require.ErrorContains(t, config.Validate(), "sweepInterval")
	})
}

func TestConfigAccessors(t *testing.T) {
	backend := memory.New()
	zstdCodec, err := codec.Zstd()
	require.NoError(t, err)
	traceCfg := otel.NewTracerConfig()
	metricCfg := otel.NewMetricConfig()

	config := NewConfig(backend,
		WithNamespace("app"),
		WithCapacity(2*size.MB),
		WithCleanupThreshold(0.5),
		WithSweepInterval(time.Minute),
		WithCodec(zstdCodec),
		WithLogger(log.DiscardLogger),
		WithTracing(traceCfg),
		WithMetrics(metricCfg))

	require.NoError(t, config.Validate())
	require.Same(t, backend, config.Backend())
	require.Equal(t, "app", config.Namespace())
	require.EqualValues(t, 2*size.MB, config.Capacity())
	require.InDelta(t, 0.5, config.CleanupThreshold(), 0.0001)
	require.Equal(t, time.Minute, config.SweepInterval())
	require.Equal(t, "zstd", config.Codec().Name())
	require.Equal(t, log.DiscardLogger, config.Logger())
	require.Same(t, traceCfg, config.TraceConfig())
	require.Same(t, metricCfg, config.MetricConfig())
}

func TestConfigDefaults(t *testing.T) {
	config := NewConfig(memory.New())

	require.Equal(t, DefaultNamespace, config.Namespace())
	require.EqualValues(t, DefaultCapacity, config.Capacity())
	require.InDelta(t, DefaultCleanupThreshold, config.CleanupThreshold(), 0.0001)
	require.Equal(t, DefaultSweepInterval, config.SweepInterval())
	require.Equal(t, "passthrough", config.Codec().Name())
	require.Nil(t, config.TraceConfig())
	require.Nil(t, config.MetricConfig())
}
