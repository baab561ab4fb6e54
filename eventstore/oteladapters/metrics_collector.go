package oteladapters

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	unitSeconds = "s"

	descDuration = "Duration of an event store or circulation operation"
	descCounter  = "Count of event store or circulation operations by outcome"
	descValue    = "Last observed value"
)

// MetricsCollector maps RecordDuration to a histogram in seconds, IncrementCounter to a
// counter and RecordValue to a gauge. Instruments are created on first use and cached; it is
// safe for concurrent use by the engine's handlers.
type MetricsCollector struct {
	meter     metric.Meter
	namespace string

	mu         sync.RWMutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

// MetricsOption configures a MetricsCollector.
type MetricsOption func(*MetricsCollector)

// WithNamespace prefixes every instrument name, e.g. "openshelf" turns
// "commandhandler_handle_calls_total" into "openshelf.commandhandler_handle_calls_total".
func WithNamespace(namespace string) MetricsOption {
	return func(m *MetricsCollector) {
		m.namespace = strings.TrimSuffix(namespace, ".")
	}
}

// NewMetricsCollector creates a collector on meter. A nil meter makes every call a no-op.
func NewMetricsCollector(meter metric.Meter, opts ...MetricsOption) *MetricsCollector {
	m := &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *MetricsCollector) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), name, duration, labels)
}

func (m *MetricsCollector) RecordDurationContext(ctx context.Context, name string, duration time.Duration, labels map[string]string) {
	histogram, ok := instrument(m, m.histograms, name, func(full string) (metric.Float64Histogram, error) {
		return m.meter.Float64Histogram(full, metric.WithDescription(descDuration), metric.WithUnit(unitSeconds))
	})
	if !ok {
		return
	}

	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(attributes(labels)...))
}

func (m *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), name, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, name string, labels map[string]string) {
	counter, ok := instrument(m, m.counters, name, func(full string) (metric.Int64Counter, error) {
		return m.meter.Int64Counter(full, metric.WithDescription(descCounter))
	})
	if !ok {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(attributes(labels)...))
}

func (m *MetricsCollector) RecordValue(name string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), name, value, labels)
}

func (m *MetricsCollector) RecordValueContext(ctx context.Context, name string, value float64, labels map[string]string) {
	gauge, ok := instrument(m, m.gauges, name, func(full string) (metric.Float64Gauge, error) {
		return m.meter.Float64Gauge(full, metric.WithDescription(descValue))
	})
	if !ok {
		return
	}

	gauge.Record(ctx, value, metric.WithAttributes(attributes(labels)...))
}

func (m *MetricsCollector) fullName(name string) string {
	if m.namespace == "" {
		return name
	}

	return m.namespace + "." + name
}

// instrument returns the cached instrument for name or creates it. Creation errors are not cached,
// so a meter that recovers is used again.
func instrument[I any](m *MetricsCollector, cache map[string]I, name string, create func(string) (I, error)) (I, bool) {
	var zero I

	if m.meter == nil {
		return zero, false
	}

	m.mu.RLock()
	cached, ok := cache[name]
	m.mu.RUnlock()

	if ok {
		return cached, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := cache[name]; ok {
		return cached, true
	}

	created, err := create(m.fullName(name))
	if err != nil {
		return zero, false
	}

	cache[name] = created

	return created, true
}

func attributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

var _ eventstore.ContextualMetricsCollector = (*MetricsCollector)(nil)
