// Package audit implements the engine's audit collaborator.
//
// PostgresLog appends one row per committed operation to the circulation_audit table, next to
// the event store. SlogLog writes the same record as a structured log line, for deployments
// without PostgreSQL. Both are called from the engine's dispatcher, never inside a transaction.
package audit
