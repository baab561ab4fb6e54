package engine

import (
	"errors"
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

const (
	defaultDispatchQueueSize = 1024
	defaultDispatchWorkers   = 2
)

// ErrInvalidDispatchConfig is returned for a non-positive dispatch queue size or worker count.
var ErrInvalidDispatchConfig = errors.New("dispatch queue size and workers must be positive")

// Option configures an Engine.
type Option func(*Engine) error

// WithPolicy replaces policy.Default. The policy is validated.
func WithPolicy(p policy.Policy) Option {
	return func(e *Engine) error {
		if err := p.Validate(); err != nil {
			return err
		}

		e.policy = p

		return nil
	}
}

// WithRetryOptions configures the optimistic concurrency retry loop of every operation.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(e *Engine) error {
		e.retryOptions = opts
		return nil
	}
}

// WithNotifier sets the notification collaborator.
func WithNotifier(notifier Notifier) Option {
	return func(e *Engine) error {
		e.notifier = notifier
		return nil
	}
}

// WithAuditLog sets the audit collaborator.
func WithAuditLog(auditLog AuditLog) Option {
	return func(e *Engine) error {
		e.auditLog = auditLog
		return nil
	}
}

// WithDispatch sizes the collaborator queue and its worker pool.
func WithDispatch(queueSize, workers int) Option {
	return func(e *Engine) error {
		if queueSize < 1 || workers < 1 {
			return ErrInvalidDispatchConfig
		}

		e.dispatchQueueSize = queueSize
		e.dispatchWorkers = workers

		return nil
	}
}

// WithClock replaces time.Now as the source of OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		e.now = now
		return nil
	}
}

// WithLogger sets the basic logger.
func WithLogger(logger shell.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger, which takes precedence over WithLogger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector shell.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}
