package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.CopiesAcquiredEventType:
		return unmarshalPayload[core.CopiesAcquired](storableEvent.PayloadJSON)

	case core.CopiesWithdrawnEventType:
		return unmarshalPayload[core.CopiesWithdrawn](storableEvent.PayloadJSON)

	case core.HoldPlacedEventType:
		return unmarshalPayload[core.HoldPlaced](storableEvent.PayloadJSON)

	case core.HoldCanceledEventType:
		return unmarshalPayload[core.HoldCanceled](storableEvent.PayloadJSON)

	case core.HoldExpiredEventType:
		return unmarshalPayload[core.HoldExpired](storableEvent.PayloadJSON)

	case core.BookCheckedOutEventType:
		return unmarshalPayload[core.BookCheckedOut](storableEvent.PayloadJSON)

	case core.LoanRenewedEventType:
		return unmarshalPayload[core.LoanRenewed](storableEvent.PayloadJSON)

	case core.LoanReturnedEventType:
		return unmarshalPayload[core.LoanReturned](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

// unmarshalPayload decodes into the event struct directly; the JSON field names are the Go field names.
func unmarshalPayload[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var payload E

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return payload, nil
}
