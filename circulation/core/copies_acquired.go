package core

import (
	"time"

	"github.com/google/uuid"
)

// CopiesAcquiredEventType is the event type identifier.
const CopiesAcquiredEventType = "CopiesAcquired"

// CopiesAcquired records new lendable copies of a title. The first one creates the catalog record.
type CopiesAcquired struct {
	BookID     BookIDString
	Title      string
	ISBN       ISBNString
	Quantity   int
	OccurredAt OccurredAtTS
}

// BuildCopiesAcquired creates a new CopiesAcquired event.
func BuildCopiesAcquired(bookID uuid.UUID, title string, isbn string, quantity int, occurredAt time.Time) CopiesAcquired {
	return CopiesAcquired{
		BookID:     bookID.String(),
		Title:      title,
		ISBN:       isbn,
		Quantity:   quantity,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopiesAcquired) EventType() string {
	return CopiesAcquiredEventType
}

func (e CopiesAcquired) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e CopiesAcquired) TitleID() BookIDString {
	return e.BookID
}
