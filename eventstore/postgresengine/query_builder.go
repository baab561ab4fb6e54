package postgresengine

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	jsoniter "github.com/json-iterator/go"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colSequenceNumber = "sequence_number"
	cteContext        = "context"
	cteVals           = "vals"
	dialectPostgres   = "postgres"
	aliasMaxSeq       = "max_seq"
	castText          = "?::text"
	castTimestamp     = "?::timestamp with time zone"
	castJsonb         = "?::jsonb"
	payloadContains   = colPayload + " @> ?::jsonb"
)

type sqlQueryString = string

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt, err := addWhereClause(filter, selectStmt)
	if err != nil {
		return "", err
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildInsertQuery builds one INSERT ... SELECT guarded by the max sequence number of the filtered stream:
//
//	WITH context AS (SELECT MAX(sequence_number) AS max_seq FROM events WHERE <filter>),
//	     vals AS (SELECT ... UNION ALL SELECT ...)
//	INSERT INTO events (...) SELECT vals.* FROM context, vals WHERE COALESCE(max_seq, 0) = <expected>
func (es *EventStore) buildInsertQuery(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	if len(events) == 0 {
		return "", eventstore.ErrNoEventsToAppend
	}

	builder := goqu.Dialect(dialectPostgres)

	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	cteStmt, err := addWhereClause(filter, cteStmt)
	if err != nil {
		return "", err
	}

	var valuesStmt *goqu.SelectDataset

	for _, event := range events {
		row := builder.Select(
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		)

		if valuesStmt == nil {
			valuesStmt = row
			continue
		}

		valuesStmt = valuesStmt.UnionAll(row)
	}

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.T(cteVals).Col(colEventType),
					goqu.T(cteVals).Col(colOccurredAt),
					goqu.T(cteVals).Col(colPayload),
					goqu.T(cteVals).Col(colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func addWhereClause(filter eventstore.Filter, selectStmt *goqu.SelectDataset) (*goqu.SelectDataset, error) {
	if filter.MatchesAnyEvent() {
		return selectStmt, nil
	}

	itemsExpressions := make([]exp.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		itemExpressions := make([]exp.Expression, 0, 2)

		if len(item.EventTypes()) > 0 {
			itemExpressions = append(itemExpressions, goqu.C(colEventType).In(item.EventTypes()))
		}

		if len(item.Predicates()) > 0 {
			predicateExpressions := make([]exp.Expression, 0, len(item.Predicates()))

			for _, predicate := range item.Predicates() {
				containment, err := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
				if err != nil {
					return nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
				}

				predicateExpressions = append(predicateExpressions, goqu.L(payloadContains, containment))
			}

			if item.AllPredicatesMustMatch() {
				itemExpressions = append(itemExpressions, goqu.And(predicateExpressions...))
			} else {
				itemExpressions = append(itemExpressions, goqu.Or(predicateExpressions...))
			}
		}

		if len(itemExpressions) > 0 {
			itemsExpressions = append(itemsExpressions, goqu.And(itemExpressions...))
		}
	}

	if len(itemsExpressions) == 0 {
		return selectStmt, nil
	}

	return selectStmt.Where(goqu.Or(itemsExpressions...)), nil
}
