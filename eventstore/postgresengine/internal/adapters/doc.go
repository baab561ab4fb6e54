// Package adapters hides the differences between pgxpool.Pool, sql.DB and sqlx.DB behind DBAdapter.
package adapters
