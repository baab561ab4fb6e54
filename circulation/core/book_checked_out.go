package core

import (
	"time"

	"github.com/google/uuid"
)

// BookCheckedOutEventType is the event type identifier.
const BookCheckedOutEventType = "BookCheckedOut"

// BookCheckedOut opens a loan of Quantity copies.
//
// With FulfilledHold set, one of the copies is the unit the patron's hold already took out
// of the pool, so the pool only shrinks by Quantity-1.
type BookCheckedOut struct {
	LoanID        LoanIDString
	BookID        BookIDString
	PatronID      PatronIDString
	Quantity      int
	DueDate       time.Time
	FulfilledHold bool
	OccurredAt    OccurredAtTS
}

// BuildBookCheckedOut creates a new BookCheckedOut event.
func BuildBookCheckedOut(
	loanID uuid.UUID,
	bookID uuid.UUID,
	patronID uuid.UUID,
	quantity int,
	dueDate time.Time,
	fulfilledHold bool,
	occurredAt time.Time,
) BookCheckedOut {

	return BookCheckedOut{
		LoanID:        loanID.String(),
		BookID:        bookID.String(),
		PatronID:      patronID.String(),
		Quantity:      quantity,
		DueDate:       ToOccurredAt(dueDate),
		FulfilledHold: fulfilledHold,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e BookCheckedOut) EventType() string {
	return BookCheckedOutEventType
}

func (e BookCheckedOut) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e BookCheckedOut) TitleID() BookIDString {
	return e.BookID
}

// PoolDecrement is how many copies the checkout takes from the lendable pool.
func (e BookCheckedOut) PoolDecrement() int {
	if e.FulfilledHold {
		return e.Quantity - 1
	}

	return e.Quantity
}
