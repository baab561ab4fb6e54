package patronloans

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// QueryHandler reads the patron's loan events across all titles and projects them.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle executes Query -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (PatronLoans, error) {
	storableEvents, maxSeq, err := h.eventStore.Query(
		eventstore.WithEventualConsistency(ctx),
		shell.PatronFilter(query.PatronID.String()),
	)
	if err != nil {
		return PatronLoans{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return PatronLoans{}, err
	}

	return Project(history, query, maxSeq), nil
}
