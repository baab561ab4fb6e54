package shell

import "context"

type actorKey struct{}

// ContextWithActor attaches the authenticated patron or staff id supplied by the auth collaborator.
// It ends up in the metadata of every event the command appends and in the audit record.
func ContextWithActor(ctx context.Context, actorID ActorID) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFrom returns the actor attached to ctx, or "" if there is none.
func ActorFrom(ctx context.Context) ActorID {
	actorID, _ := ctx.Value(actorKey{}).(ActorID)
	return actorID
}
