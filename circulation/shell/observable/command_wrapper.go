package observable

import (
	"context"
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

// CommandWrapper instruments any command handler with metrics, tracing and logging.
// Business rejections (insufficient copies, renewal limit, ...) are reported as "rejected",
// separate from infrastructure errors.
type CommandWrapper[C shell.Command] struct {
	coreHandler      shell.CommandHandler[C]
	commandType      string
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewCommandWrapper creates a new observable wrapper around the core command handler.
func NewCommandWrapper[C shell.Command](
	coreHandler shell.CommandHandler[C],
	opts ...CommandOption[C],
) (*CommandWrapper[C], error) {
	var zeroCommand C

	wrapper := &CommandWrapper[C]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the core handler and records the outcome.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	commandStart := time.Now()
	ctx, span := shell.StartSpan(ctx, w.tracingCollector, shell.SpanNameCommandHandle, shell.LogAttrCommandType, w.commandType)
	shell.LogInfo(ctx, w.logger, w.contextualLogger, shell.LogMsgCommandStarted, shell.LogAttrCommandType, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)
	duration := time.Since(commandStart)

	w.recordRetryMetrics(ctx, result)

	status := shell.ClassifyError(err)
	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishSpan(w.tracingCollector, span, status, duration, err)

	switch status {
	case shell.StatusSuccess:
		shell.LogInfo(ctx, w.logger, w.contextualLogger, shell.LogMsgCommandCompleted,
			shell.LogAttrCommandType, w.commandType,
			shell.LogAttrBusinessOutcome, status,
			shell.LogAttrRetryAttempts, result.RetryAttempts,
			shell.LogAttrDurationMS, shell.ToMilliseconds(duration),
		)
	case shell.StatusRejected:
		shell.LogInfo(ctx, w.logger, w.contextualLogger, shell.LogMsgCommandRejected,
			shell.LogAttrCommandType, w.commandType,
			shell.LogAttrBusinessOutcome, status,
			shell.LogAttrError, err.Error(),
		)
	default:
		shell.LogError(ctx, w.logger, w.contextualLogger, shell.LogMsgCommandFailed,
			shell.LogAttrCommandType, w.commandType,
			shell.LogAttrStatus, status,
			shell.LogAttrError, err.Error(),
		)
	}

	return result, err
}

// CommandOption defines a functional option for configuring CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C]) error

// WithCommandMetrics sets the metrics collector for the CommandWrapper.
func WithCommandMetrics[C shell.Command](collector shell.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithCommandTracing sets the tracing collector for the CommandWrapper.
func WithCommandTracing[C shell.Command](collector shell.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithCommandContextualLogging sets the contextual logger for the CommandWrapper.
func WithCommandContextualLogging[C shell.Command](logger shell.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithCommandLogging sets the basic logger for the CommandWrapper.
func WithCommandLogging[C shell.Command](logger shell.Logger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.logger = logger
		return nil
	}
}

func (w *CommandWrapper[C]) recordRetryMetrics(ctx context.Context, result shell.HandlerResult) {
	if w.metricsCollector == nil {
		return
	}

	contextualCollector, isContextual := w.metricsCollector.(shell.ContextualMetricsCollector)

	if result.RetryAttempts > 1 {
		retryLabels := shell.BuildRetryLabels(w.commandType, result.RetryAttempts-1, result.LastErrorType)
		delayLabels := map[string]string{shell.LogAttrCommandType: w.commandType}

		if isContextual {
			contextualCollector.IncrementCounterContext(ctx, shell.CommandHandlerRetriesMetric, retryLabels)
			contextualCollector.RecordDurationContext(ctx, shell.CommandHandlerRetryDelayMetric, result.TotalRetryDelay, delayLabels)
		} else {
			w.metricsCollector.IncrementCounter(shell.CommandHandlerRetriesMetric, retryLabels)
			w.metricsCollector.RecordDuration(shell.CommandHandlerRetryDelayMetric, result.TotalRetryDelay, delayLabels)
		}
	}

	if result.RetriesExhausted {
		exhaustedLabels := map[string]string{shell.LogAttrCommandType: w.commandType}

		if isContextual {
			contextualCollector.IncrementCounterContext(ctx, shell.CommandHandlerMaxRetriesReachedMetric, exhaustedLabels)
		} else {
			w.metricsCollector.IncrementCounter(shell.CommandHandlerMaxRetriesReachedMetric, exhaustedLabels)
		}
	}
}
