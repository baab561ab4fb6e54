package postgresengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "

	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrEventType        = "event_type"
	logAttrEventCount       = "event_count"
	logAttrMaxSequence      = "max_sequence"
	logAttrDurationMS       = "duration_ms"
	logAttrExpectedEvents   = "expected_events"
	logAttrRowsAffected     = "rows_affected"
	logAttrExpectedSequence = "expected_sequence"

	operationQuery  = "query"
	operationAppend = "append"

	spanNameQuery  = "eventstore.query"
	spanNameAppend = "eventstore.append"

	spanAttrOperation    = "operation"
	spanAttrEventCount   = "event_count"
	spanAttrEventType    = "event_type"
	spanAttrExpectedSeq  = "expected_sequence"
	spanAttrMaxSequence  = "max_sequence"
	spanAttrRowsAffected = "rows_affected"
	spanAttrErrorType    = "error_type"

	metricQueryDuration        = "eventstore_query_duration_seconds"
	metricAppendDuration       = "eventstore_append_duration_seconds"
	metricEventsQueried        = "eventstore_events_queried_total"
	metricEventsAppended       = "eventstore_events_appended_total"
	metricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	metricDatabaseErrors       = "eventstore_database_errors_total"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	errorTypeBuildQuery   = "build_query"
	errorTypeDatabase     = "database"
	errorTypeScan         = "scan"
	errorTypeRowsAffected = "rows_affected"
	errorTypeCanceled     = "canceled"
	errorTypeTimeout      = "timeout"
)

func classifyError(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errorTypeTimeout
	default:
		return errorTypeDatabase
	}
}

func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

/***** logging *****/

func (es *EventStore) logSQL(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case es.logger != nil:
		es.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

func (es *EventStore) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case es.logger != nil:
		es.logger.Info(logMsgOperation+action, args...)
	}
}

func (es *EventStore) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.WarnContext(ctx, msg, args...)
	case es.logger != nil:
		es.logger.Warn(msg, args...)
	}
}

func (es *EventStore) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	case es.logger != nil:
		es.logger.Error(msg, allArgs...)
	}
}

/***** metrics *****/

func (es *EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, labels)
}

func (es *EventStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	es.metricsCollector.IncrementCounter(metric, labels)
}

func (es *EventStore) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	es.metricsCollector.RecordValue(metric, value, labels)
}

/***** tracing *****/

func (es *EventStore) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if es.tracingCollector == nil {
		return ctx, nil
	}

	return es.tracingCollector.StartSpan(ctx, name, attrs)
}

func (es *EventStore) finishSpan(span eventstore.SpanContext, status string, attrs map[string]string) {
	if es.tracingCollector == nil || span == nil {
		return
	}

	es.tracingCollector.FinishSpan(span, status, attrs)
}

func appendSpanAttrs(events eventstore.StorableEvents, expected eventstore.MaxSequenceNumberUint) map[string]string {
	attrs := map[string]string{
		spanAttrOperation:   operationAppend,
		spanAttrEventCount:  strconv.Itoa(len(events)),
		spanAttrExpectedSeq: strconv.FormatUint(uint64(expected), 10),
	}

	if len(events) > 0 {
		attrs[spanAttrEventType] = events[0].EventType
	}

	return attrs
}

/***** combined observers *****/

func (es *EventStore) observeQuerySuccess(
	ctx context.Context,
	span eventstore.SpanContext,
	eventCount int,
	maxSequenceNumber eventstore.MaxSequenceNumberUint,
	duration time.Duration,
) {

	labels := map[string]string{labelOperation: operationQuery, labelStatus: eventstore.StatusSuccess}
	es.recordDuration(ctx, metricQueryDuration, duration, labels)
	es.recordValue(ctx, metricEventsQueried, float64(eventCount), labels)

	es.finishSpan(span, eventstore.StatusSuccess, map[string]string{
		spanAttrEventCount:  strconv.Itoa(eventCount),
		spanAttrMaxSequence: strconv.FormatUint(uint64(maxSequenceNumber), 10),
	})
}

func (es *EventStore) observeAppendSuccess(
	ctx context.Context,
	span eventstore.SpanContext,
	rowsAffected int64,
	duration time.Duration,
) {

	labels := map[string]string{labelOperation: operationAppend, labelStatus: eventstore.StatusSuccess}
	es.recordDuration(ctx, metricAppendDuration, duration, labels)
	es.recordValue(ctx, metricEventsAppended, float64(rowsAffected), labels)

	es.finishSpan(span, eventstore.StatusSuccess, map[string]string{
		spanAttrRowsAffected: strconv.FormatInt(rowsAffected, 10),
	})
}

func (es *EventStore) observeConflict(ctx context.Context, span eventstore.SpanContext, duration time.Duration) {
	es.recordDuration(ctx, metricAppendDuration, duration,
		map[string]string{labelOperation: operationAppend, labelStatus: eventstore.StatusConflict})
	es.incrementCounter(ctx, metricConcurrencyConflicts, map[string]string{labelOperation: operationAppend})

	es.finishSpan(span, eventstore.StatusConflict, nil)
}

func (es *EventStore) observeFailure(
	ctx context.Context,
	span eventstore.SpanContext,
	operation string,
	errorType string,
	duration time.Duration,
) {

	metric := metricQueryDuration
	if operation == operationAppend {
		metric = metricAppendDuration
	}

	es.recordDuration(ctx, metric, duration, map[string]string{labelOperation: operation, labelStatus: eventstore.StatusError})
	es.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
		labelOperation: operation,
		labelStatus:    eventstore.StatusError,
		labelErrorType: errorType,
	})

	es.finishSpan(span, eventstore.StatusError, map[string]string{spanAttrErrorType: errorType})
}
