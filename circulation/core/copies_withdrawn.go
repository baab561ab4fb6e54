package core

import (
	"time"

	"github.com/google/uuid"
)

// CopiesWithdrawnEventType is the event type identifier.
const CopiesWithdrawnEventType = "CopiesWithdrawn"

// CopiesWithdrawn records copies taken out of the lendable pool for good (lost, damaged, weeded).
type CopiesWithdrawn struct {
	BookID     BookIDString
	Quantity   int
	OccurredAt OccurredAtTS
}

// BuildCopiesWithdrawn creates a new CopiesWithdrawn event.
func BuildCopiesWithdrawn(bookID uuid.UUID, quantity int, occurredAt time.Time) CopiesWithdrawn {
	return CopiesWithdrawn{
		BookID:     bookID.String(),
		Quantity:   quantity,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopiesWithdrawn) EventType() string {
	return CopiesWithdrawnEventType
}

func (e CopiesWithdrawn) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e CopiesWithdrawn) TitleID() BookIDString {
	return e.BookID
}
