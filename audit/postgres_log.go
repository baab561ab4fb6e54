package audit

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jmoiron/sqlx"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
)

//go:embed schema.sql
var schemaSQL string

const (
	// DefaultTableName is the audit table used unless WithTableName says otherwise.
	DefaultTableName = "circulation_audit"

	tablePlaceholder = "__TABLE__"
	dialectPostgres  = "postgres"

	colOperation    = "operation"
	colActorID      = "actor_id"
	colBookID       = "book_id"
	colPatronID     = "patron_id"
	colLoanID       = "loan_id"
	colCopiesBefore = "copies_before"
	colCopiesAfter  = "copies_after"
	colOccurredAt   = "occurred_at"
)

var (
	// ErrEmptyTableName is returned by WithTableName("").
	ErrEmptyTableName = errors.New("audit table name must not be empty")

	// ErrWritingAuditRecordFailed is returned when the insert fails.
	ErrWritingAuditRecordFailed = errors.New("writing audit record failed")

	// ErrReadingAuditRecordsFailed is returned when the select fails.
	ErrReadingAuditRecordsFailed = errors.New("reading audit records failed")

	// ErrCreatingAuditSchemaFailed is returned when one of the DDL statements fails.
	ErrCreatingAuditSchemaFailed = errors.New("creating the audit schema failed")

	// ErrBuildingAuditQueryFailed is returned when goqu cannot render a statement.
	ErrBuildingAuditQueryFailed = errors.New("building audit query failed")
)

// Row is one stored audit record.
type Row struct {
	Operation    string    `db:"operation"`
	ActorID      string    `db:"actor_id"`
	BookID       string    `db:"book_id"`
	PatronID     string    `db:"patron_id"`
	LoanID       string    `db:"loan_id"`
	CopiesBefore int       `db:"copies_before"`
	CopiesAfter  int       `db:"copies_after"`
	OccurredAt   time.Time `db:"occurred_at"`
}

// PostgresLog is an engine.AuditLog writing to PostgreSQL through sqlx.
type PostgresLog struct {
	db        *sqlx.DB
	tableName string
}

// Option configures a PostgresLog.
type Option func(*PostgresLog) error

// WithTableName sets a custom table name.
func WithTableName(tableName string) Option {
	return func(l *PostgresLog) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		l.tableName = tableName

		return nil
	}
}

// NewPostgresLog creates a PostgresLog on db, which must use a PostgreSQL driver.
func NewPostgresLog(db *sqlx.DB, options ...Option) (*PostgresLog, error) {
	l := &PostgresLog{db: db, tableName: DefaultTableName}

	for _, option := range options {
		if err := option(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// CreateSchema creates the audit table and its index if they do not exist yet.
func (l *PostgresLog) CreateSchema(ctx context.Context) error {
	ddl := strings.ReplaceAll(schemaSQL, tablePlaceholder, l.tableName)

	for _, statement := range strings.Split(ddl, ";") {
		if statement = strings.TrimSpace(statement); statement == "" {
			continue
		}

		if _, err := l.db.ExecContext(ctx, statement); err != nil {
			return errors.Join(ErrCreatingAuditSchemaFailed, err)
		}
	}

	return nil
}

// Record inserts one row.
func (l *PostgresLog) Record(ctx context.Context, record engine.AuditRecord) error {
	query, args, err := l.buildInsert(record)
	if err != nil {
		return err
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Join(ErrWritingAuditRecordFailed, err)
	}

	return nil
}

// ForTitle returns the newest records of a title, newest first.
func (l *PostgresLog) ForTitle(ctx context.Context, bookID core.BookIDString, limit uint) ([]Row, error) {
	query, args, err := l.buildSelectForTitle(bookID, limit)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	if err := l.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Join(ErrReadingAuditRecordsFailed, err)
	}

	return rows, nil
}

func (l *PostgresLog) buildInsert(record engine.AuditRecord) (string, []any, error) {
	query, args, err := goqu.Dialect(dialectPostgres).
		Insert(l.tableName).
		Prepared(true).
		Rows(goqu.Record{
			colOperation:    string(record.Operation),
			colActorID:      record.ActorID,
			colBookID:       record.BookID,
			colPatronID:     record.PatronID,
			colLoanID:       record.LoanID,
			colCopiesBefore: record.CopiesBefore,
			colCopiesAfter:  record.CopiesAfter,
			colOccurredAt:   record.OccurredAt.UTC(),
		}).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingAuditQueryFailed, err)
	}

	return query, args, nil
}

func (l *PostgresLog) buildSelectForTitle(bookID core.BookIDString, limit uint) (string, []any, error) {
	query, args, err := goqu.Dialect(dialectPostgres).
		From(l.tableName).
		Prepared(true).
		Select(colOperation, colActorID, colBookID, colPatronID, colLoanID, colCopiesBefore, colCopiesAfter, colOccurredAt).
		Where(goqu.C(colBookID).Eq(bookID)).
		Order(goqu.C(colOccurredAt).Desc(), goqu.C("id").Desc()).
		Limit(limit).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingAuditQueryFailed, err)
	}

	return query, args, nil
}
