package eventstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrEmptyEventType      = errors.New("event type must not be empty")
	ErrInvalidPayloadJSON  = errors.New("payload json is not valid")
	ErrInvalidMetadataJSON = errors.New("metadata json is not valid")
)

type StorableEvents = []StorableEvent

// StorableEvent is the scalar envelope the engines persist. Circulation events are
// encoded into it by the shell layer, so the store never sees domain types.
// Build it with BuildStorableEvent so the JSON columns are known to be valid.
type StorableEvent struct {
	EventType      string
	OccurredAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
	SequenceNumber MaxSequenceNumberUint
}

// BuildStorableEvent rejects an empty event type and payload or metadata that is not valid JSON.
func BuildStorableEvent(eventType string, occurredAt time.Time, payloadJSON []byte, metadataJSON []byte) (StorableEvent, error) {
	switch {
	case eventType == "":
		return StorableEvent{}, ErrEmptyEventType
	case !validJSON(payloadJSON):
		return StorableEvent{}, ErrInvalidPayloadJSON
	case !validJSON(metadataJSON):
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		EventType:    eventType,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildStorableEventWithEmptyMetadata stores "{}" as metadata.
func BuildStorableEventWithEmptyMetadata(eventType string, occurredAt time.Time, payloadJSON []byte) (StorableEvent, error) {
	return BuildStorableEvent(eventType, occurredAt, payloadJSON, []byte("{}"))
}

func validJSON(data []byte) bool {
	return jsoniter.ConfigFastest.Valid(data)
}

// WithSequenceNumber is used by the engines when reading back. Append ignores the field.
func (e StorableEvent) WithSequenceNumber(sequenceNumber MaxSequenceNumberUint) StorableEvent {
	e.SequenceNumber = sequenceNumber
	return e
}
