package core

import (
	"time"

	"github.com/google/uuid"
)

// HoldPlacedEventType is the event type identifier.
const HoldPlacedEventType = "HoldPlaced"

// HoldPlaced records a reservation. One copy leaves the lendable pool until the hold is closed.
type HoldPlaced struct {
	BookID     BookIDString
	PatronID   PatronIDString
	PickupBy   time.Time
	OccurredAt OccurredAtTS
}

// BuildHoldPlaced creates a new HoldPlaced event.
func BuildHoldPlaced(bookID uuid.UUID, patronID uuid.UUID, pickupBy time.Time, occurredAt time.Time) HoldPlaced {
	return HoldPlaced{
		BookID:     bookID.String(),
		PatronID:   patronID.String(),
		PickupBy:   ToOccurredAt(pickupBy),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e HoldPlaced) EventType() string {
	return HoldPlacedEventType
}

func (e HoldPlaced) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e HoldPlaced) TitleID() BookIDString {
	return e.BookID
}
