// Package postgresengine is the PostgreSQL implementation of the circulation event store.
//
// Events live in a single append-only table (see CreateSchema). A Query returns the events
// matching a Filter and the highest sequence number among them. Append inserts new events
// only if that number is unchanged, inside a transaction holding an advisory lock on the
// Filter, so two writers of the same title can never both succeed against the same version.
//
// The store works on top of pgxpool.Pool, sql.DB (lib/pq) or sqlx.DB:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		pool,
//		postgresengine.WithTableName("circulation_events"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
package postgresengine
