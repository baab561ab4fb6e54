package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db      *sqlx.DB
	replica *sqlx.DB
}

// NewSQLXAdapter creates an adapter that runs every statement on db.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// NewSQLXAdapterWithReplica creates an adapter that sends eventually consistent reads to replica.
func NewSQLXAdapterWithReplica(db *sqlx.DB, replica *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db, replica: replica}
}

func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	db := s.db

	if s.replica != nil && eventstore.ReadsReplica(ctx) {
		db = s.replica
	}

	return queryStd(ctx, db, query)
}

func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlResult{result: result}, nil
}

func (s *SQLXAdapter) ExecLocked(ctx context.Context, lockKey string, query string) (DBResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return execLockedStd(ctx, tx.Tx, lockKey, query)
}
