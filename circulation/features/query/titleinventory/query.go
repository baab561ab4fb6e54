package titleinventory

import (
	"time"

	"github.com/google/uuid"
)

const (
	queryType = "TitleInventory"
)

// Query asks for the inventory of BookID as seen at At.
type Query struct {
	BookID uuid.UUID
	At     time.Time
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(bookID uuid.UUID, at time.Time) Query {
	return Query{
		BookID: bookID,
		At:     at,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
