package adapters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// SQLAdapter implements DBAdapter for sql.DB, typically opened with the lib/pq or pgx stdlib driver.
type SQLAdapter struct {
	db      *sql.DB
	replica *sql.DB
}

// NewSQLAdapter creates an adapter that runs every statement on db.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// NewSQLAdapterWithReplica creates an adapter that sends eventually consistent reads to replica.
func NewSQLAdapterWithReplica(db *sql.DB, replica *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, replica: replica}
}

func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	db := s.db

	if s.replica != nil && eventstore.ReadsReplica(ctx) {
		db = s.replica
	}

	return queryStd(ctx, db, query)
}

func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlResult{result: result}, nil
}

func (s *SQLAdapter) ExecLocked(ctx context.Context, lockKey string, query string) (DBResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return execLockedStd(ctx, tx, lockKey, query)
}

type stdQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryStd(ctx context.Context, db stdQueryer, query string) (DBRows, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlRows{rows: rows}, nil
}

func execLockedStd(ctx context.Context, tx *sql.Tx, lockKey string, query string) (result DBResult, err error) {
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				err = errors.Join(err, rollbackErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, advisoryLockQuery, lockKey); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &sqlResult{result: res}, nil
}

type sqlRows struct {
	rows *sql.Rows
}

func (s *sqlRows) Next() bool {
	return s.rows.Next()
}

func (s *sqlRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *sqlRows) Close() error {
	return s.rows.Close()
}

func (s *sqlRows) Err() error {
	return s.rows.Err()
}

type sqlResult struct {
	result sql.Result
}

func (s *sqlResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}
