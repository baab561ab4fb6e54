package core

import (
	"time"

	"github.com/google/uuid"
)

// HoldExpiredEventType is the event type identifier.
const HoldExpiredEventType = "HoldExpired"

// HoldExpired records that an active hold passed its pickup deadline. The held copy returns to the pool.
type HoldExpired struct {
	BookID     BookIDString
	PatronID   PatronIDString
	PickupBy   time.Time
	OccurredAt OccurredAtTS
}

// BuildHoldExpired creates a new HoldExpired event.
func BuildHoldExpired(bookID uuid.UUID, patronID uuid.UUID, pickupBy time.Time, occurredAt time.Time) HoldExpired {
	return HoldExpired{
		BookID:     bookID.String(),
		PatronID:   patronID.String(),
		PickupBy:   ToOccurredAt(pickupBy),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e HoldExpired) EventType() string {
	return HoldExpiredEventType
}

func (e HoldExpired) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e HoldExpired) TitleID() BookIDString {
	return e.BookID
}
