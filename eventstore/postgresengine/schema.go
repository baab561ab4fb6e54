package postgresengine

import (
	"context"
	_ "embed"
	"errors"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

const tablePlaceholder = "__TABLE__"

// ErrCreatingSchemaFailed is returned when one of the DDL statements fails.
var ErrCreatingSchemaFailed = errors.New("creating the events schema failed")

// CreateSchema creates the events table and its indexes if they do not exist yet.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	for _, statement := range schemaStatements(es.eventTableName) {
		if _, err := es.db.Exec(ctx, statement); err != nil {
			es.logError(ctx, ErrCreatingSchemaFailed.Error(), err, logAttrQuery, statement)
			return errors.Join(ErrCreatingSchemaFailed, err)
		}
	}

	es.logOperation(ctx, "schema ensured", "table", es.eventTableName)

	return nil
}

func schemaStatements(tableName string) []string {
	ddl := strings.ReplaceAll(schemaSQL, tablePlaceholder, tableName)
	statements := make([]string, 0, 3)

	for _, statement := range strings.Split(ddl, ";") {
		if statement = strings.TrimSpace(statement); statement != "" {
			statements = append(statements, statement)
		}
	}

	return statements
}
