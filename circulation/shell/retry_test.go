package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
	"github.com/Agihtaws/OpenShelf-sub001/testutil/observability/testdoubles"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetryOnConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return eventstore.ErrConcurrencyConflict
		}
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_FailsFastOnBusinessErrors(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	businessErr := errors.New("insufficient copies")

	fn := func(_ context.Context) error {
		callCount++
		return businessErr
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.ErrorIs(t, err, businessErr)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "other", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_ExhaustsAndRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	collector := testdoubles.NewMetricsCollectorSpy(true)
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return eventstore.ErrConcurrencyConflict
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(time.Millisecond),
		WithJitterFactor(0),
		WithMetrics(collector, "Reserve"),
	)

	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
	assert.True(t, meta.RetriesExhausted)
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
	assert.Equal(t, 3*time.Millisecond, meta.TotalDelay)
	assert.Equal(t, 2, collector.CounterCount(CommandHandlerRetriesMetric))
	assert.True(t, collector.HasCounter(CommandHandlerMaxRetriesReachedMetric, map[string]string{
		LogAttrCommandType: "Reserve",
		"final_error_type": "concurrency_conflict",
	}))
}

func Test_RetryWithExponentialBackoff_StopsWhenContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fn := func(_ context.Context) error {
		cancel()
		return eventstore.ErrConcurrencyConflict
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Second))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	_, err := RetryWithExponentialBackoff(ctx, fn, WithMaxAttempts(0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(-1*time.Second))
	assert.ErrorIs(t, err, ErrNegativeBaseDelay)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithJitterFactor(1.5))
	assert.ErrorIs(t, err, ErrInvalidJitterFactor)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(nil, "Reserve"))
	assert.ErrorIs(t, err, ErrNilMetricsCollector)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(testdoubles.NewMetricsCollectorSpy(false), ""))
	assert.ErrorIs(t, err, ErrEmptyCommandType)
}
