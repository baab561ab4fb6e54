package postgresengine

import (
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the table name for the EventStore.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
//
// Debug level: SQL statements with execution timing
// Info level: event counts, durations, concurrency conflicts
// Warn level: non-critical issues like failing to close rows
// Error level: failures that abort the operation.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the collector receiving query/append durations, event counts, conflicts and errors.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the collector receiving a span per Query and Append.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.tracingCollector = collector
		return nil
	}
}
