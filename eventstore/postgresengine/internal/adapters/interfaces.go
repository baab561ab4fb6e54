package adapters

import "context"

// DBAdapter is the subset of database operations the event store needs.
type DBAdapter interface {
	// Query runs a read. Implementations route it to a replica when the context asks for eventual consistency.
	Query(ctx context.Context, query string) (DBRows, error)

	// Exec runs a single statement on the primary.
	Exec(ctx context.Context, query string) (DBResult, error)

	// ExecLocked runs query on the primary inside a transaction that first takes
	// a transaction-scoped advisory lock on lockKey.
	ExecLocked(ctx context.Context, lockKey string, query string) (DBResult, error)
}

// DBRows are the rows returned by Query.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// DBResult is the result of Exec.
type DBResult interface {
	RowsAffected() (int64, error)
}

// advisoryLockQuery serializes writers of the same consistency boundary for the rest of the transaction.
// A fresh snapshot is taken for the following statement under READ COMMITTED, so it sees every
// event committed by the previous lock holder.
const advisoryLockQuery = "SELECT pg_advisory_xact_lock(hashtext($1))"
