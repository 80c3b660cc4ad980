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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/offlinekit/swrcache/otel"
)

const instrumentationName = "github.com/offlinekit/swrcache"

type instrumentation struct {
	tracer     trace.Tracer
	traceAttrs []attribute.KeyValue

	requests  metric.Int64Counter
	errors    metric.Int64Counter
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter
	duration  metric.Float64Histogram
}

func newInstrumentation(traceConfig *otel.TracerConfig, metricConfig *otel.MetricConfig) *instrumentation {
	inst := &instrumentation{}

	if traceConfig != nil && traceConfig.TracerProvider() != nil {
		inst.tracer = traceConfig.TracerProvider().Tracer(instrumentationName)
		inst.traceAttrs = append(inst.traceAttrs, traceConfig.Attributes()...)
	}

	if metricConfig == nil {
		return inst
	}

	meter := metricConfig.Provider().Meter(instrumentationName)
	inst.requests, _ = meter.Int64Counter(
		"swrcache.requests",
		metric.WithDescription("Total number of cache operations"),
	)
	inst.errors, _ = meter.Int64Counter(
		"swrcache.errors",
		metric.WithDescription("Total number of failed cache operations"),
	)
	inst.hits, _ = meter.Int64Counter(
		"swrcache.hits",
		metric.WithDescription("Total number of usable cache reads"),
	)
	inst.misses, _ = meter.Int64Counter(
		"swrcache.misses",
		metric.WithDescription("Total number of cache reads that found nothing usable"),
	)
	inst.evictions, _ = meter.Int64Counter(
		"swrcache.evictions",
		metric.WithDescription("Total number of records removed by reclamation"),
	)
	inst.duration, _ = meter.Float64Histogram(
		"swrcache.duration.ms",
		metric.WithDescription("Cache operation latency in milliseconds"),
	)

	return inst
}

func (i *instrumentation) start(ctx context.Context, op string, namespace string) (context.Context, func(error)) {
	if i == nil {
		return ctx, func(error) {}
	}

	start := time.Now()
	ctx, span := i.startSpan(ctx, op, namespace)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		i.recordMetrics(ctx, op, namespace, start, err)
	}
}

func (i *instrumentation) startSpan(ctx context.Context, op string, namespace string) (context.Context, trace.Span) {
	if i.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	attrs := []attribute.KeyValue{
		attribute.String("swrcache.operation", op),
		attribute.String("swrcache.namespace", namespace),
	}
	attrs = append(attrs, i.traceAttrs...)

	return i.tracer.Start(ctx, "swrcache."+op, trace.WithAttributes(attrs...))
}

func (i *instrumentation) recordMetrics(ctx context.Context, op string, namespace string, start time.Time, err error) {
	if i == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("swrcache.operation", op),
		attribute.String("swrcache.namespace", namespace),
	}

	if i.requests != nil {
		i.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if err != nil && i.errors != nil {
		i.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if i.duration != nil {
		i.duration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
	}
}

func (i *instrumentation) recordHit(ctx context.Context, namespace string) {
	if i == nil || i.hits == nil {
		return
	}
	i.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("swrcache.namespace", namespace)))
}

func (i *instrumentation) recordMiss(ctx context.Context, namespace string) {
	if i == nil || i.misses == nil {
		return
	}
	i.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("swrcache.namespace", namespace)))
}

func (i *instrumentation) recordEvictions(ctx context.Context, namespace string, count int64) {
	if i == nil || i.evictions == nil {
		return
	}
	i.evictions.Add(ctx, count, metric.WithAttributes(attribute.String("swrcache.namespace", namespace)))
}
