package lapsedholds

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// QueryHandler reads the hold events of all titles and projects the lapsed ones.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle executes Query -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (LapsedHolds, error) {
	storableEvents, maxSeq, err := h.eventStore.Query(eventstore.WithEventualConsistency(ctx), shell.HoldEventsFilter())
	if err != nil {
		return LapsedHolds{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return LapsedHolds{}, err
	}

	return Project(history, query, maxSeq), nil
}
