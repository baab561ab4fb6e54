// Package engine is the API surface of the circulation and inventory consistency engine.
//
// Every operation couples the ledger entry and the copy counter in one conditional append on
// the title's consistency boundary, retried on concurrency conflicts. Callers never get to
// touch one without the other.
//
// Committed operations are handed to the audit and notification collaborators through a
// bounded asynchronous dispatcher. Neither can block or roll back an operation.
//
// Usage:
//
//	store := memengine.NewEventStore()
//	e, err := engine.New(store, engine.WithPolicy(policy.Default()))
//	if err != nil { ... }
//	defer e.Close(ctx)
//
//	receipt, err := e.Checkout(engine.ContextWithActor(ctx, staffID), patronID, bookID, 1)
//	if err != nil {
//		fmt.Println(core.UserMessage(err))
//	}
package engine
