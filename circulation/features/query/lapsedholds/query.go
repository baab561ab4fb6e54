package lapsedholds

import (
	"time"
)

const (
	queryType = "LapsedHolds"
)

// Query asks for the holds that are lapsed at At.
type Query struct {
	At time.Time
}

// BuildQuery creates a new Query.
func BuildQuery(at time.Time) Query {
	return Query{At: at}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
