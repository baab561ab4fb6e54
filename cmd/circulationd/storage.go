package main

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/config"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/memengine"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/postgresengine"
)

func (a *app) openEventStore(ctx context.Context, cfg *config.Config, t telemetry) (shell.EventStore, error) {
	if cfg.Storage.Engine == config.EngineMemory {
		return memengine.NewEventStore(memengine.WithLogger(a.logger)), nil
	}

	opts := []postgresengine.Option{
		postgresengine.WithTableName(cfg.Storage.TableName),
		postgresengine.WithLogger(a.logger),
	}
	if t.metrics != nil {
		opts = append(opts, postgresengine.WithMetrics(t.metrics))
	}
	if t.tracing != nil {
		opts = append(opts, postgresengine.WithTracing(t.tracing))
	}
	if t.contextualLogger != nil {
		opts = append(opts, postgresengine.WithContextualLogger(t.contextualLogger))
	}

	store, err := a.openPostgresStore(ctx, cfg.Storage, opts)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.CreateSchema {
		if err := store.CreateSchema(ctx); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func (a *app) openPostgresStore(ctx context.Context, s config.Storage, opts []postgresengine.Option) (*postgresengine.EventStore, error) {
	switch s.Adapter {
	case config.AdapterSQLDB:
		db, err := s.OpenSQLDB(ctx, s.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		if s.ReplicaDSN == "" {
			return postgresengine.NewEventStoreFromSQLDB(db, opts...)
		}

		replica, err := s.OpenSQLDB(ctx, s.ReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return replica.Close() })

		return postgresengine.NewEventStoreFromSQLDBWithReplica(db, replica, opts...)

	case config.AdapterSQLXDB:
		db, err := s.OpenSQLX(ctx, s.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		if s.ReplicaDSN == "" {
			return postgresengine.NewEventStoreFromSQLX(db, opts...)
		}

		replica, err := s.OpenSQLX(ctx, s.ReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return replica.Close() })

		return postgresengine.NewEventStoreFromSQLXWithReplica(db, replica, opts...)

	default:
		pool, err := s.OpenPGXPool(ctx, s.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })

		if s.ReplicaDSN == "" {
			return postgresengine.NewEventStoreFromPGXPool(pool, opts...)
		}

		replica, err := s.OpenPGXPool(ctx, s.ReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { replica.Close(); return nil })

		return postgresengine.NewEventStoreFromPGXPoolWithReplica(pool, replica, opts...)
	}
}
