package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// StorableEventFrom converts a DomainEvent and EventMetadata to a StorableEvent.
func StorableEventFrom(event core.DomainEvent, metadata EventMetadata) (eventstore.StorableEvent, error) {
	payloadJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	metadataJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(metadata)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForMetadata, err)
	}

	storableEvent, err := eventstore.BuildStorableEvent(
		event.EventType(),
		event.HasOccurredAt(),
		payloadJSON,
		metadataJSON,
	)

	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	return storableEvent, nil
}

// StorableEventsFrom converts all events with the same metadata.
func StorableEventsFrom(events core.DomainEvents, metadata EventMetadata) (eventstore.StorableEvents, error) {
	storableEvents := make(eventstore.StorableEvents, 0, len(events))

	for _, event := range events {
		storableEvent, err := StorableEventFrom(event, metadata)
		if err != nil {
			return nil, err
		}

		storableEvents = append(storableEvents, storableEvent)
	}

	return storableEvents, nil
}
