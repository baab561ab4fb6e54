package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const driverPostgres = "postgres"

var (
	// ErrParsingDSNFailed is returned when pgx cannot parse the DSN.
	ErrParsingDSNFailed = errors.New("parsing postgres dsn failed")

	// ErrConnectingFailed is returned when the pool cannot be opened or the ping fails.
	ErrConnectingFailed = errors.New("connecting to postgres failed")
)

// PGXPoolConfig returns a pool config for dsn with the configured sizing.
func (s Storage) PGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrParsingDSNFailed, err)
	}

	dbConfig.MaxConns = int32(s.MaxConns)
	dbConfig.MinConns = int32(s.MinConns)
	dbConfig.MaxConnLifetime = s.MaxConnLifetime
	dbConfig.MaxConnIdleTime = s.MaxConnIdleTime
	dbConfig.ConnConfig.ConnectTimeout = s.ConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool opens and pings a pgx pool.
func (s Storage) OpenPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := s.PGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	return pool, nil
}

// OpenSQLDB opens and pings a database/sql handle on the lib/pq driver.
func (s Storage) OpenSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	s.configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	return db, nil
}

// OpenSQLX opens and pings a sqlx handle on the lib/pq driver.
func (s Storage) OpenSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverPostgres, dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	s.configurePool(db.DB)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	return db, nil
}

func (s Storage) configurePool(db *sql.DB) {
	db.SetMaxOpenConns(s.MaxConns)
	db.SetMaxIdleConns(max(s.MinConns, 1))
	db.SetConnMaxLifetime(s.MaxConnLifetime)
	db.SetConnMaxIdleTime(s.MaxConnIdleTime)
}
