package shell

import "errors"

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")

	// ErrMappingToStorableEventFailedForDomainEvent is returned when domain event serialization fails.
	ErrMappingToStorableEventFailedForDomainEvent = errors.New("mapping to storable event failed for domain event")

	// ErrMappingToStorableEventFailedForMetadata is returned when metadata serialization fails.
	ErrMappingToStorableEventFailedForMetadata = errors.New("mapping to storable event failed for metadata")

	// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
	ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

	// ErrLoadingTitleFailed wraps store and mapping errors while reading a title's history.
	ErrLoadingTitleFailed = errors.New("loading title failed")
)
