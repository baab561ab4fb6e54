package patronloans

import (
	"time"

	"github.com/google/uuid"
)

const (
	queryType = "PatronLoans"
)

// Query asks for the loans of PatronID as seen at At. Returned loans are left out unless IncludeReturned is set.
type Query struct {
	PatronID        uuid.UUID
	At              time.Time
	IncludeReturned bool
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(patronID uuid.UUID, at time.Time, includeReturned bool) Query {
	return Query{
		PatronID:        patronID,
		At:              at,
		IncludeReturned: includeReturned,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
