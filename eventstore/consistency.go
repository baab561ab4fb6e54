package eventstore

import "context"

// ConsistencyLevel selects which database a Query may read from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Circulation commands decide on it.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency lets a configured replica serve the read. Read models
	// and the hold sweeper's scan use it.
	EventualConsistency
)

type consistencyKey struct{}

// WithStrongConsistency pins reads made with ctx to the primary.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyKey{}, StrongConsistency)
}

// WithEventualConsistency allows reads made with ctx to go to a replica.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyKey{}, EventualConsistency)
}

// ConsistencyFrom returns the level carried by ctx, StrongConsistency if none was set.
func ConsistencyFrom(ctx context.Context) ConsistencyLevel {
	level, ok := ctx.Value(consistencyKey{}).(ConsistencyLevel)
	if !ok {
		return StrongConsistency
	}

	return level
}

// ReadsReplica reports whether a read made with ctx may be served by a replica.
func ReadsReplica(ctx context.Context) bool {
	return ConsistencyFrom(ctx) == EventualConsistency
}

func (c ConsistencyLevel) String() string {
	if c == StrongConsistency {
		return "strong"
	}

	if c == EventualConsistency {
		return "eventual"
	}

	return "unknown"
}
