package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Agihtaws/OpenShelf-sub001/audit"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/config"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/oteladapters"
	"github.com/Agihtaws/OpenShelf-sub001/notify"
	"github.com/Agihtaws/OpenShelf-sub001/sweeper"
)

const instrumentationName = "github.com/Agihtaws/OpenShelf-sub001"

// ErrAuditNeedsPostgres is returned for the postgres audit sink on the memory storage engine.
var ErrAuditNeedsPostgres = errors.New("the postgres audit sink needs postgres storage")

// app owns every long-lived component and closes them in reverse order of creation.
type app struct {
	engine  *engine.Engine
	sweeper *sweeper.Sweeper
	outbox  *notify.Outbox
	closers []func(ctx context.Context) error
	logger  *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger}

	if err := a.build(ctx, cfg); err != nil {
		return nil, errors.Join(err, a.close(context.Background()))
	}

	return a, nil
}

func (a *app) build(ctx context.Context, cfg *config.Config) error {
	logger := a.logger

	telemetry, err := a.newTelemetry(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := a.openEventStore(ctx, cfg, telemetry)
	if err != nil {
		return err
	}

	rules, err := cfg.PolicyRules()
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Notifications.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Notifications.RedisAddr})
		a.closers = append(a.closers, func(context.Context) error { return redisClient.Close() })
	}

	notifier, err := a.newNotifier(cfg, redisClient)
	if err != nil {
		return err
	}

	auditLog, err := a.newAuditLog(ctx, cfg)
	if err != nil {
		return err
	}

	engineOpts := []engine.Option{
		engine.WithPolicy(rules),
		engine.WithRetryOptions(cfg.RetryOptions()...),
		engine.WithDispatch(cfg.Dispatch.QueueSize, cfg.Dispatch.Workers),
		engine.WithNotifier(notifier),
		engine.WithAuditLog(auditLog),
		engine.WithLogger(logger),
	}
	engineOpts = append(engineOpts, telemetry.engineOptions()...)

	a.engine, err = engine.New(store, engineOpts...)
	if err != nil {
		return err
	}

	a.closers = append(a.closers, a.engine.Close)

	if cfg.Sweeper.Enabled {
		sweeperOpts := []sweeper.Option{
			sweeper.WithSchedule(cfg.Sweeper.Schedule),
			sweeper.WithRunTimeout(cfg.Sweeper.RunTimeout),
			sweeper.WithLogger(logger),
		}
		if telemetry.contextualLogger != nil {
			sweeperOpts = append(sweeperOpts, sweeper.WithContextualLogger(telemetry.contextualLogger))
		}
		if redisClient != nil {
			sweeperOpts = append(sweeperOpts,
				sweeper.WithLocker(sweeper.NewRedisLocker(redisClient, cfg.Sweeper.LockKey, cfg.Sweeper.LockTTL)))
		}

		if a.sweeper, err = sweeper.New(a.engine, sweeperOpts...); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) start(ctx context.Context) error {
	if a.outbox != nil {
		go a.outbox.Start(ctx)
	}

	if a.sweeper != nil {
		if err := a.sweeper.Start(ctx); err != nil {
			return err
		}
	}

	return nil
}

// shutdown stops the sweeper first so no new commands start, then drains the engine's dispatcher
// into the outbox before the outbox itself stops.
func (a *app) shutdown(ctx context.Context) error {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	return a.close(ctx)
}

func (a *app) close(ctx context.Context) error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}

func (a *app) newNotifier(cfg *config.Config, redisClient *redis.Client) (engine.Notifier, error) {
	var delivery engine.Notifier = newLogNotifier(a.logger)
	if redisClient != nil {
		delivery = notify.NewRedisPublisher(redisClient, cfg.Notifications.Channel)
	}

	if cfg.Notifications.OutboxPath == "" {
		return delivery, nil
	}

	outbox, err := notify.NewOutbox(notify.OutboxConfig{
		Path:    cfg.Notifications.OutboxPath,
		Workers: cfg.Notifications.OutboxWorkers,
	}, delivery, a.logger)
	if err != nil {
		return nil, err
	}

	a.outbox = outbox
	a.closers = append(a.closers, func(ctx context.Context) error {
		outbox.Stop(ctx)
		return outbox.Close()
	})

	return outbox, nil
}

func (a *app) newAuditLog(ctx context.Context, cfg *config.Config) (engine.AuditLog, error) {
	switch cfg.Audit.Sink {
	case config.AuditSinkNone:
		return nil, nil
	case config.AuditSinkPostgres:
		if cfg.Storage.Engine != config.EnginePostgres {
			return nil, ErrAuditNeedsPostgres
		}

		db, err := cfg.Storage.OpenSQLX(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		auditLog, err := audit.NewPostgresLog(db, audit.WithTableName(cfg.Audit.TableName))
		if err != nil {
			return nil, err
		}

		if cfg.Storage.CreateSchema {
			if err := auditLog.CreateSchema(ctx); err != nil {
				return nil, err
			}
		}

		return auditLog, nil
	default:
		return audit.NewSlogLog(a.logger), nil
	}
}

// telemetry holds the optional OpenTelemetry collectors; all nil when telemetry is disabled.
type telemetry struct {
	metrics          shell.MetricsCollector
	tracing          shell.TracingCollector
	contextualLogger shell.ContextualLogger
}

func (a *app) newTelemetry(ctx context.Context, cfg *config.Config) (telemetry, error) {
	if !cfg.Telemetry.Enabled {
		return telemetry{}, nil
	}

	providers, err := oteladapters.NewProviders(ctx, oteladapters.ProvidersConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		SetGlobal:      true,
	})
	if err != nil {
		return telemetry{}, err
	}

	a.closers = append(a.closers, providers.Shutdown)

	return telemetry{
		metrics: oteladapters.NewMetricsCollector(providers.Meter(instrumentationName),
			oteladapters.WithNamespace(cfg.Telemetry.MetricsPrefix)),
		tracing:          oteladapters.NewTracingCollector(providers.Tracer(instrumentationName)),
		contextualLogger: oteladapters.NewSlogBridgeLogger(instrumentationName),
	}, nil
}

func (t telemetry) engineOptions() []engine.Option {
	var opts []engine.Option

	if t.metrics != nil {
		opts = append(opts, engine.WithMetrics(t.metrics))
	}

	if t.tracing != nil {
		opts = append(opts, engine.WithTracing(t.tracing))
	}

	if t.contextualLogger != nil {
		opts = append(opts, engine.WithContextualLogger(t.contextualLogger))
	}

	return opts
}

// logNotifier stands in for a delivery channel when no Redis is configured.
type logNotifier struct {
	logger *slog.Logger
}

func newLogNotifier(logger *slog.Logger) *logNotifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(ctx context.Context, notification engine.Notification) error {
	n.logger.InfoContext(ctx, "patron notification",
		"kind", string(notification.Kind),
		"patron_id", notification.PatronID,
		"book_id", notification.BookID,
		"loan_id", notification.LoanID,
	)

	return nil
}
