// Package memengine is an in-process implementation of the event store with the same
// conditional append semantics as postgresengine. It backs the unit tests and the
// single-node daemon mode.
package memengine

import (
	"context"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logAttrEventCount         = "event_count"
	logAttrExpectedSequence   = "expected_sequence"
	logAttrActualSequence     = "actual_sequence"
)

// EventStore keeps all events in memory, guarded by a single RWMutex.
type EventStore struct {
	mu     sync.RWMutex
	events eventstore.StorableEvents
	logger eventstore.Logger
}

// Option configures an EventStore.
type Option func(*EventStore)

// WithLogger logs appends at debug level and conflicts at info level.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) {
		es.logger = logger
	}
}

// NewEventStore returns an empty store.
func NewEventStore(options ...Option) *EventStore {
	es := &EventStore{}

	for _, option := range options {
		option(es)
	}

	return es
}

// Query returns the events matching filter and the highest sequence number among them.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	matching, maxSeq := es.matching(filter)

	return matching, maxSeq, nil
}

// Append writes the events if the filtered stream is still at expectedMaxSequenceNumber.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if _, actual := es.matching(filter); actual != expectedMaxSequenceNumber {
		if es.logger != nil {
			es.logger.Info(logMsgConcurrencyConflict,
				logAttrExpectedSequence, expectedMaxSequenceNumber,
				logAttrActualSequence, actual,
			)
		}

		return eventstore.ErrConcurrencyConflict
	}

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)
	for _, e := range allEvents {
		es.events = append(es.events, e.WithSequenceNumber(eventstore.MaxSequenceNumberUint(len(es.events)+1)))
	}

	if es.logger != nil {
		es.logger.Debug(logMsgEventsAppended, logAttrEventCount, len(allEvents))
	}

	return nil
}

// Len returns the total number of stored events.
func (es *EventStore) Len() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return len(es.events)
}

func (es *EventStore) matching(filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint) {
	matching := make(eventstore.StorableEvents, 0)
	maxSeq := eventstore.MaxSequenceNumberUint(0)

	for _, event := range es.events {
		if Matches(filter, event) {
			matching = append(matching, event)
			maxSeq = event.SequenceNumber
		}
	}

	return matching, maxSeq
}

// Matches reports whether event is selected by filter, mirroring the SQL translation
// of postgresengine: items OR-ed, event types OR-ed, predicates OR-ed or AND-ed.
func Matches(filter eventstore.Filter, event eventstore.StorableEvent) bool {
	if filter.MatchesAnyEvent() {
		return true
	}

	for _, item := range filter.Items() {
		if matchesItem(item, event) {
			return true
		}
	}

	return false
}

func matchesItem(item eventstore.FilterItem, event eventstore.StorableEvent) bool {
	if len(item.EventTypes()) == 0 && len(item.Predicates()) == 0 {
		return false
	}

	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), event.EventType) {
		return false
	}

	if len(item.Predicates()) == 0 {
		return true
	}

	for _, predicate := range item.Predicates() {
		matched := payloadHas(event.PayloadJSON, predicate)

		if item.AllPredicatesMustMatch() && !matched {
			return false
		}

		if !item.AllPredicatesMustMatch() && matched {
			return true
		}
	}

	return item.AllPredicatesMustMatch()
}

func payloadHas(payload []byte, predicate eventstore.FilterPredicate) bool {
	value := jsoniter.ConfigFastest.Get(payload, predicate.Key())

	return value.ValueType() == jsoniter.StringValue && value.ToString() == predicate.Val()
}
