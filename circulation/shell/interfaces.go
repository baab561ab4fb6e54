package shell

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// QueriesEvents is what read models need from an event store.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// EventStore is what command handlers need: a query plus the conditional append.
// Both postgresengine.EventStore and memengine.EventStore satisfy it.
type EventStore interface {
	QueriesEvents
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		storableEvent eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// Command is implemented by every circulation command. CommandType must work on the zero value.
type Command interface {
	CommandType() string
}

// CommandHandler runs one command: load the title, decide, append, retry on conflicts.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query is implemented by every read model query.
type Query interface {
	QueryType() string
}

// QueryHandler projects a read model.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
