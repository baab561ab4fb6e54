package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyCommandType is returned when an empty command type is provided to WithMetrics.
	ErrEmptyCommandType = errors.New("command type must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt: typically load, decide and conditionally append.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how a retried operation went.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector MetricsCollector
	commandType      string
}

// Error types reported in RetryMetrics.LastErrorType and the retry metric labels.
const (
	errorTypeNone                = "none"
	errorTypeConcurrencyConflict = "concurrency_conflict"
	errorTypeCanceled            = "context_canceled"
	errorTypeDeadlineExceeded    = "context_deadline_exceeded"
	errorTypeOther               = "other"

	labelAttemptNumber  = "attempt_number"
	labelFinalErrorType = "final_error_type"
)

// RetryWithExponentialBackoff runs fn until it succeeds, fails with a non-retryable error or
// maxAttempts is reached.
//
// Retry schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms, each plus up to 30% jitter.
//
// Only eventstore.ErrConcurrencyConflict is retried. Every attempt re-reads the title, so a retry
// never blindly repeats a write. Context cancellation and deadlines fail fast.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	r := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return RetryMetrics{}, err
		}
	}

	metrics := RetryMetrics{LastErrorType: errorType(nil)}

	var err error

	for attempt := range r.maxAttempts {
		if attempt > 0 {
			delay := r.backoff(attempt)
			r.observeDelay(ctx, attempt, delay)

			if waitErr := sleep(ctx, delay); waitErr != nil {
				metrics.LastErrorType = errorType(waitErr)
				return metrics, waitErr
			}

			metrics.TotalDelay += delay
		}

		metrics.Attempts++

		err = fn(ctx)
		metrics.LastErrorType = errorType(err)

		if err == nil || !errors.Is(err, eventstore.ErrConcurrencyConflict) {
			return metrics, err
		}

		if attempt < r.maxAttempts-1 {
			r.countRetry(ctx, attempt+1, err)
		}
	}

	metrics.RetriesExhausted = true
	r.countExhausted(ctx, err)

	return metrics, err
}

// backoff is baseDelay * 2^(attempt-1) plus up to jitterFactor of that, uncapped.
func (r *retryConfig) backoff(attempt int) time.Duration {
	delay := r.baseDelay << (attempt - 1)
	jitter := rand.Float64() * float64(delay) * r.jitterFactor //nolint:gosec // jitter needs no crypto randomness

	return delay + time.Duration(jitter)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *retryConfig) observeDelay(ctx context.Context, attempt int, delay time.Duration) {
	if r.metricsCollector == nil {
		return
	}

	recordDuration(ctx, r.metricsCollector, CommandHandlerRetryDelayMetric, delay, map[string]string{
		LogAttrCommandType: r.commandType,
		labelAttemptNumber: strconv.Itoa(attempt),
	})
}

// countRetry counts only conflicts that are followed by another attempt.
func (r *retryConfig) countRetry(ctx context.Context, attemptNumber int, err error) {
	if r.metricsCollector == nil {
		return
	}

	incrementCounter(ctx, r.metricsCollector, CommandHandlerRetriesMetric,
		BuildRetryLabels(r.commandType, attemptNumber, errorType(err)))
}

func (r *retryConfig) countExhausted(ctx context.Context, err error) {
	if r.metricsCollector == nil {
		return
	}

	incrementCounter(ctx, r.metricsCollector, CommandHandlerMaxRetriesReachedMetric, map[string]string{
		LogAttrCommandType:  r.commandType,
		labelFinalErrorType: errorType(err),
	})
}

func errorType(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeDeadlineExceeded
	default:
		return errorTypeOther
	}
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the first retry; each further retry doubles it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the backoff delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithMetrics counts retries and exhaustion per command type and records each backoff delay.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		config.metricsCollector = collector
		config.commandType = commandType

		return nil
	}
}
