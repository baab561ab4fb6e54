package core

import (
	"time"

	"github.com/google/uuid"
)

// HoldCanceledEventType is the event type identifier.
const HoldCanceledEventType = "HoldCanceled"

// HoldCanceled records that a patron gave up an active hold. The held copy returns to the pool.
type HoldCanceled struct {
	BookID     BookIDString
	PatronID   PatronIDString
	OccurredAt OccurredAtTS
}

// BuildHoldCanceled creates a new HoldCanceled event.
func BuildHoldCanceled(bookID uuid.UUID, patronID uuid.UUID, occurredAt time.Time) HoldCanceled {
	return HoldCanceled{
		BookID:     bookID.String(),
		PatronID:   patronID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e HoldCanceled) EventType() string {
	return HoldCanceledEventType
}

func (e HoldCanceled) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e HoldCanceled) TitleID() BookIDString {
	return e.BookID
}
