package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// MetricsCollectorSpy captures metrics calls for testing. It implements the contextual variant too,
// so it sees what a component sends to an OpenTelemetry backed collector.
type MetricsCollectorSpy struct {
	durationRecords []SpyMetricRecord
	counterRecords  []SpyMetricRecord
	valueRecords    []SpyMetricRecord
	mu              sync.Mutex
	recordCalls     bool
}

// SpyMetricRecord represents one recorded metric call. Duration or Value is set depending on the kind.
type SpyMetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
// Set recordCalls to true to capture all metrics calls for inspection in tests.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.append(&s.durationRecords, SpyMetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.append(&s.counterRecords, SpyMetricRecord{Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.append(&s.valueRecords, SpyMetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

func (s *MetricsCollectorSpy) append(records *[]SpyMetricRecord, record SpyMetricRecord) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	*records = append(*records, record)
}

// HasCounter reports whether a counter was incremented for metric with at least the given labels.
func (s *MetricsCollectorSpy) HasCounter(metric string, labels map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return containsRecord(s.counterRecords, metric, labels)
}

// HasDuration reports whether a duration was recorded for metric with at least the given labels.
func (s *MetricsCollectorSpy) HasDuration(metric string, labels map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return containsRecord(s.durationRecords, metric, labels)
}

// HasValue reports whether a value was recorded for metric with at least the given labels.
func (s *MetricsCollectorSpy) HasValue(metric string, labels map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return containsRecord(s.valueRecords, metric, labels)
}

// CounterCount returns the number of recorded counter increments for metric.
func (s *MetricsCollectorSpy) CounterCount(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.counterRecords {
		if record.Metric == metric {
			count++
		}
	}

	return count
}

func containsRecord(records []SpyMetricRecord, metric string, labels map[string]string) bool {
	for _, record := range records {
		if record.Metric != metric {
			continue
		}

		matches := true
		for k, v := range labels {
			if record.Labels[k] != v {
				matches = false
				break
			}
		}

		if matches {
			return true
		}
	}

	return false
}

var _ eventstore.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
