package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const providerMeterName = "github.com/quadroute/quadroute/internal/telemetry"

var (
	providerOnce          sync.Once
	sharedProviderMetrics *ProviderMetrics
)

// ProviderMetrics records outcomes of upstream provider calls and the
// caches in front of them. All methods are safe on a nil receiver so
// callers can ignore instrument creation failures.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
}

// NewProviderMetrics creates the provider call instruments on the global
// meter.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(providerMeterName)

	duration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64Counter(
		"provider.cache.hit",
		metric.WithDescription("Number of provider cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"provider.cache.miss",
		metric.WithDescription("Number of provider cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: duration,
		requestTotal:    total,
		cacheHits:       hits,
		cacheMisses:     misses,
	}, nil
}

func providerAttrs(provider, operation string, err error) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}
	return attrs
}

// RecordRequest records one provider call. A background context is used so
// recording survives cancellation of the request that triggered the call.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	ctx := context.Background()
	opts := metric.WithAttributes(providerAttrs(provider, operation, err)...)
	m.requestDuration.Record(ctx, duration.Seconds(), opts)
	m.requestTotal.Add(ctx, 1, opts)
}

// RecordCacheHit counts a lookup answered from cache.
func (m *ProviderMetrics) RecordCacheHit(provider, operation string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(context.Background(), 1, metric.WithAttributes(providerAttrs(provider, operation, nil)...))
}

// RecordCacheMiss counts a lookup that had to go upstream.
func (m *ProviderMetrics) RecordCacheMiss(provider, operation string) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(providerAttrs(provider, operation, nil)...))
}

// Providers returns the shared provider metrics instance, created on first
// use. Returns nil when instrument creation fails; recording on nil is a
// no-op.
func Providers() *ProviderMetrics {
	providerOnce.Do(func() {
		m, err := NewProviderMetrics()
		if err == nil {
			sharedProviderMetrics = m
		}
	})
	return sharedProviderMetrics
}
