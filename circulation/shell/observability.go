package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration.
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// CommandHandlerRejectedMetric tracks commands refused by a circulation rule.
	CommandHandlerRejectedMetric = "commandhandler_rejected_operations_total"

	// CommandHandlerCanceledMetric tracks canceled operations.
	CommandHandlerCanceledMetric = "commandhandler_canceled_operations_total"

	// CommandHandlerTimeoutMetric tracks timeout operations.
	CommandHandlerTimeoutMetric = "commandhandler_timeout_operations_total"

	// CommandHandlerConcurrencyConflictMetric tracks commands that ran out of retries.
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	// QueryHandlerDurationMetric tracks query handler execution duration.
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	// CommandHandlerRetriesMetric tracks retry attempts in command handlers.
	//
	// Labels: command_type, attempt_number, error_type.
	// Alert on high retry rates: rate(commandhandler_retries_total[5m]). A hot title (the last copy
	// of a bestseller) shows up here first.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric tracks backoff delays in command handlers.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric tracks when max retries are exhausted.
	//
	// Labels: command_type, final_error_type.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// StatusSuccess indicates successful command completion.
	StatusSuccess = "success"

	// StatusRejected indicates the command broke a circulation rule. Nothing was written.
	StatusRejected = "rejected"

	// StatusError indicates an infrastructure error.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation failed due to optimistic concurrency control.
	StatusConcurrencyConflict = "concurrency_conflict"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected command"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"

	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrError           = "error"
	LogAttrEventCount      = "event_count"
	LogAttrRetryAttempts   = "retry_attempts"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "commandhandler.handle"

	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "queryhandler.handle"
)

// The observability interfaces are the event store's, so one set of adapters serves both layers.
type (
	MetricsCollector           = eventstore.MetricsCollector
	ContextualMetricsCollector = eventstore.ContextualMetricsCollector
	TracingCollector           = eventstore.TracingCollector
	SpanContext                = eventstore.SpanContext
	ContextualLogger           = eventstore.ContextualLogger
	Logger                     = eventstore.Logger
)

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		labelAttemptNumber: strconv.Itoa(attemptNumber),
		"error_type":       errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// ClassifyError maps a handler error to the status used in metrics, spans and logs.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	case IsRejection(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// RecordCommandMetrics records duration and call count, plus the dedicated counter for the non-success statuses.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	statusMetric := map[string]string{
		StatusRejected:            CommandHandlerRejectedMetric,
		StatusCanceled:            CommandHandlerCanceledMetric,
		StatusTimeout:             CommandHandlerTimeoutMetric,
		StatusConcurrencyConflict: CommandHandlerConcurrencyConflictMetric,
	}

	if metric, ok := statusMetric[status]; ok {
		incrementCounter(ctx, collector, metric, BuildCommandLabels(commandType, status))
	}
}

// RecordQueryMetrics records duration and call count of a query.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, duration time.Duration, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// StartSpan starts a span, or returns ctx and nil if tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	spanName string,
	typeAttr string,
	typeName string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, spanName, map[string]string{typeAttr: typeName})
}

// FinishSpan completes a span with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogInfo prefers the contextual logger so trace ids end up in the record.
func LogInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

// LogWarn prefers the contextual logger so trace ids end up in the record.
func LogWarn(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.WarnContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Warn(msg, args...)
	}
}

// LogError prefers the contextual logger so trace ids end up in the record.
func LogError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is due to optimistic concurrency control failure.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict) || errors.Is(err, core.ErrTransactionConflict)
}

// IsRejection reports whether err is a circulation rule violation rather than an infrastructure failure.
func IsRejection(err error) bool {
	for _, rejection := range []error{
		core.ErrInsufficientCopies,
		core.ErrHoldNotActive,
		core.ErrHoldAlreadyActive,
		core.ErrHoldNotLapsed,
		core.ErrLoanNotActive,
		core.ErrRenewalLimitExceeded,
		core.ErrRenewalWindowExceeded,
		core.ErrInvalidQuantity,
		core.ErrInvalidPickupDeadline,
		core.ErrNotFound,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}
