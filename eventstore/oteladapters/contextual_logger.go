package oteladapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// SlogBridgeLogger is a ContextualLogger on the otelslog bridge. Records carry the trace and span
// ids of the context, which ties a "command rejected" line to the span of that command.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger logs through the global LoggerProvider under the instrumentation scope name.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithHandler logs to handler instead. No trace correlation is added.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(handler)}
}

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

var _ eventstore.ContextualLogger = (*SlogBridgeLogger)(nil)

// OTelLogger is a ContextualLogger that emits log records through the OpenTelemetry log API.
// Arguments are slog-style key/value pairs; a dangling key or a non-string key is dropped.
type OTelLogger struct {
	logger log.Logger
}

func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args)
}

func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args)
}

func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args)
}

func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args)
}

func (l *OTelLogger) emit(ctx context.Context, severity log.Severity, msg string, args []any) {
	var record log.Record
	record.SetTimestamp(time.Now())
	record.SetSeverity(severity)
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		record.AddAttributes(log.KeyValue{Key: key, Value: logValue(args[i+1])})
	}

	l.logger.Emit(ctx, record)
}

// logValue keeps numbers and booleans typed, so copy counts and retry attempts stay queryable.
func logValue(v any) log.Value {
	switch x := v.(type) {
	case string:
		return log.StringValue(x)
	case bool:
		return log.BoolValue(x)
	case int:
		return log.IntValue(x)
	case int64:
		return log.Int64Value(x)
	case uint:
		return log.Int64Value(int64(x))
	case float64:
		return log.Float64Value(x)
	case time.Duration:
		return log.Float64Value(float64(x) / float64(time.Millisecond))
	case time.Time:
		return log.StringValue(x.UTC().Format(time.RFC3339Nano))
	case error:
		return log.StringValue(x.Error())
	case fmt.Stringer:
		return log.StringValue(x.String())
	default:
		return log.StringValue(slog.AnyValue(v).String())
	}
}

var _ eventstore.ContextualLogger = (*OTelLogger)(nil)
