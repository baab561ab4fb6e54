package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/postgresengine/internal/adapters"
)

const defaultEventTableName = "circulation_events"

// EventStore is the PostgreSQL implementation of the event store.
type EventStore struct {
	db               adapters.DBAdapter
	eventTableName   string
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metricsCollector eventstore.MetricsCollector
	tracingCollector eventstore.TracingCollector
}

type queryResultRow struct {
	eventType      string
	payload        []byte
	metadata       []byte
	occurredAt     time.Time
	sequenceNumber eventstore.MaxSequenceNumberUint
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options)
}

// NewEventStoreFromPGXPoolWithReplica routes eventually consistent queries to replica.
func NewEventStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(db, replica), options)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options)
}

// NewEventStoreFromSQLDBWithReplica routes eventually consistent queries to replica.
func NewEventStoreFromSQLDBWithReplica(db *sql.DB, replica *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapterWithReplica(db, replica), options)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options)
}

// NewEventStoreFromSQLXWithReplica routes eventually consistent queries to replica.
func NewEventStoreFromSQLXWithReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapterWithReplica(db, replica), options)
}

func newEventStore(db adapters.DBAdapter, options []Option) (*EventStore, error) {
	es := &EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// TableName returns the name of the events table.
func (es *EventStore) TableName() string {
	return es.eventTableName
}

// Query retrieves the events matching filter in sequence order,
// together with the highest sequence number among them (0 if none).
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, span := es.startSpan(ctx, spanNameQuery, map[string]string{spanAttrOperation: operationQuery})
	start := time.Now()

	sqlQuery, buildQueryErr := es.buildSelectQuery(filter)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		es.observeFailure(ctx, span, operationQuery, errorTypeBuildQuery, time.Since(start))

		return nil, 0, buildQueryErr
	}

	rows, queryErr := es.db.Query(ctx, sqlQuery)
	es.logSQL(ctx, sqlQuery, operationQuery, time.Since(start))

	if queryErr != nil {
		es.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		es.observeFailure(ctx, span, operationQuery, classifyError(ctx, queryErr), time.Since(start))

		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	eventStream, maxSequenceNumber, scanErr := es.scanRows(ctx, rows)
	if scanErr != nil {
		es.observeFailure(ctx, span, operationQuery, errorTypeScan, time.Since(start))

		return nil, 0, scanErr
	}

	duration := time.Since(start)
	es.logOperation(ctx, logMsgQueryCompleted,
		logAttrEventCount, len(eventStream),
		logAttrMaxSequence, maxSequenceNumber,
		logAttrDurationMS, toMilliseconds(duration),
	)
	es.observeQuerySuccess(ctx, span, len(eventStream), maxSequenceNumber, duration)

	return eventStream, maxSequenceNumber, nil
}

func (es *EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (es *EventStore) scanRows(ctx context.Context, rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	result := queryResultRow{}
	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.sequenceNumber)
		if rowScanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, rowScanErr)

			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := eventstore.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildStorableErr != nil {
			es.logError(ctx, logMsgBuildStorableEventFailed, buildStorableErr, logAttrEventType, result.eventType)

			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		eventStream = append(eventStream, event.WithSequenceNumber(result.sequenceNumber))
		maxSequenceNumber = result.sequenceNumber
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		es.logError(ctx, logMsgScanRowFailed, rowsErr)

		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowsErr)
	}

	return eventStream, maxSequenceNumber, nil
}

// Append appends one or more events atomically if no event matching filter was appended
// after expectedMaxSequenceNumber. Otherwise, nothing is written and ErrConcurrencyConflict is returned.
//
// filter must be the one used for the Query the caller based its decision on.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	ctx, span := es.startSpan(ctx, spanNameAppend, appendSpanAttrs(allEvents, expectedMaxSequenceNumber))
	start := time.Now()

	sqlQuery, buildQueryErr := es.buildInsertQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))
		es.observeFailure(ctx, span, operationAppend, errorTypeBuildQuery, time.Since(start))

		return buildQueryErr
	}

	// The conditional insert alone is not enough under READ COMMITTED: two writers can both
	// see the old max sequence number. The advisory lock orders them per boundary.
	result, execErr := es.db.ExecLocked(ctx, es.lockKey(filter), sqlQuery)

	es.logSQL(ctx, sqlQuery, operationAppend, time.Since(start))

	if execErr != nil {
		es.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		es.observeFailure(ctx, span, operationAppend, classifyError(ctx, execErr), time.Since(start))

		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		es.observeFailure(ctx, span, operationAppend, errorTypeRowsAffected, time.Since(start))

		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	duration := time.Since(start)

	if rowsAffected < int64(len(allEvents)) {
		es.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrExpectedEvents, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)
		es.observeConflict(ctx, span, duration)

		return eventstore.ErrConcurrencyConflict
	}

	es.logOperation(ctx, logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, toMilliseconds(duration),
	)
	es.observeAppendSuccess(ctx, span, rowsAffected, duration)

	return nil
}

func (es *EventStore) lockKey(filter eventstore.Filter) string {
	return es.eventTableName + ":" + filter.String()
}
