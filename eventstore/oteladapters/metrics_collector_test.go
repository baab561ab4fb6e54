package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore/oteladapters"
)

func Test_MetricsCollector_RecordDuration_InSeconds(t *testing.T) {
	reader, collector := givenMetricsCollector()

	collector.RecordDuration("commandhandler_handle_duration_seconds", 150*time.Millisecond,
		map[string]string{"command_type": "Checkout", "status": "success"})

	histogram := findMetric[metricdata.Histogram[float64]](t, reader, "commandhandler_handle_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.0001)

	expected := attribute.NewSet(attribute.String("command_type", "Checkout"), attribute.String("status", "success"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter_SplitsByLabels(t *testing.T) {
	reader, collector := givenMetricsCollector()
	rejected := map[string]string{"command_type": "Reserve", "status": "rejected"}
	succeeded := map[string]string{"command_type": "Reserve", "status": "success"}

	collector.IncrementCounter("commandhandler_handle_calls_total", rejected)
	collector.IncrementCounter("commandhandler_handle_calls_total", rejected)
	collector.IncrementCounterContext(context.Background(), "commandhandler_handle_calls_total", succeeded)

	sum := findMetric[metricdata.Sum[int64]](t, reader, "commandhandler_handle_calls_total")
	assert.True(t, sum.IsMonotonic)
	require.Len(t, sum.DataPoints, 2)

	values := make(map[string]int64)
	for _, point := range sum.DataPoints {
		status, _ := point.Attributes.Value("status")
		values[status.AsString()] = point.Value
	}
	assert.Equal(t, map[string]int64{"rejected": 2, "success": 1}, values)
}

func Test_MetricsCollector_RecordValue_KeepsTheLastValue(t *testing.T) {
	reader, collector := givenMetricsCollector()

	collector.RecordValue("dispatcher_queue_depth", 3, nil)
	collector.RecordValueContext(context.Background(), "dispatcher_queue_depth", 7, nil)

	gauge := findMetric[metricdata.Gauge[float64]](t, reader, "dispatcher_queue_depth")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 7.0, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_WithNamespace(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	collector := oteladapters.NewMetricsCollector(meter, oteladapters.WithNamespace("openshelf."))

	collector.IncrementCounter("commandhandler_rejected_operations_total", nil)

	sum := findMetric[metricdata.Sum[int64]](t, reader, "openshelf.commandhandler_rejected_operations_total")
	assert.Len(t, sum.DataPoints, 1)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	reader, collector := givenMetricsCollector()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("commandhandler_retries_total", nil)
			collector.RecordDuration("commandhandler_retry_delay_seconds", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	sum := findMetric[metricdata.Sum[int64]](t, reader, "commandhandler_retries_total")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(50), sum.DataPoints[0].Value)
}

func Test_MetricsCollector_NilMeterIsNoop(t *testing.T) {
	collector := oteladapters.NewMetricsCollector(nil)

	assert.NotPanics(t, func() {
		collector.RecordDuration("d", time.Second, nil)
		collector.IncrementCounter("c", nil)
		collector.RecordValue("v", 1, nil)
	})
}

func Test_MetricsCollector_RetriesInstrumentCreationAfterAnError(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := &flakyMeter{Meter: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"), failures: 1}
	collector := oteladapters.NewMetricsCollector(meter)

	collector.IncrementCounter("commandhandler_handle_calls_total", nil)
	collector.IncrementCounter("commandhandler_handle_calls_total", nil)

	sum := findMetric[metricdata.Sum[int64]](t, reader, "commandhandler_handle_calls_total")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

// flakyMeter fails the first failures counter creations.
type flakyMeter struct {
	metric.Meter
	failures int
}

func (m *flakyMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("counter creation failed")
	}

	return m.Meter.Int64Counter(name, options...)
}

func givenMetricsCollector() (*sdkmetric.ManualReader, *oteladapters.MetricsCollector) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	return reader, oteladapters.NewMetricsCollector(meter)
}

func findMetric[D any](t *testing.T, reader *sdkmetric.ManualReader, name string) D {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}

			data, ok := m.Data.(D)
			require.True(t, ok, "metric %s has data of type %T", name, m.Data)

			return data
		}
	}

	t.Fatalf("metric %s not found", name)

	var zero D

	return zero
}
