package titleinventory

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// QueryHandler reads the title's boundary and projects it. Reads use eventual consistency,
// so a replica may serve them.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle executes Query -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (TitleInventory, error) {
	storableEvents, maxSeq, err := h.eventStore.Query(
		eventstore.WithEventualConsistency(ctx),
		shell.TitleBoundary(query.BookID.String()),
	)
	if err != nil {
		return TitleInventory{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return TitleInventory{}, err
	}

	return Project(history, query, maxSeq)
}
