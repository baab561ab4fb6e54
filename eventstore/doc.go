// Package eventstore provides the storage abstractions the circulation ledger is built on.
//
// Every change to a title's inventory is recorded as an event. A title's events form a
// "dynamic event stream", selected by a Filter (event types combined with JSON payload
// predicates such as BookID). Engines implement a conditional append: events are only
// written if no other event matching the same Filter was appended since the caller's Query.
// That is the compare-and-swap the inventory engine relies on for per-title serializability.
//
// Key types:
//   - Filter: criteria selecting the events of one consistency boundary
//   - StorableEvent: an event in its scalar, storage-agnostic form
//   - MaxSequenceNumberUint: the version a conditional Append is checked against
//
// Common usage pattern:
//
//	filter := BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(
//			core.HoldPlacedEventType,
//			core.BookCheckedOutEventType).
//		AndAnyPredicateOf(P("BookID", bookID.String())).
//		Finalize()
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	newEvent, _ := eventstore.BuildStorableEvent(eventType, time.Now(), payload, metadata)
//	err = store.Append(ctx, filter, maxSeq, newEvent)
package eventstore
