package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent is a circulation fact about exactly one title.
type DomainEvent interface {
	// EventType returns the string identifier for this event type.
	EventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time

	// TitleID returns the BookID of the title the event belongs to.
	TitleID() BookIDString
}

// EventTypes lists every circulation event type. A title's consistency boundary is built from it.
func EventTypes() []string {
	return []string{
		CopiesAcquiredEventType,
		CopiesWithdrawnEventType,
		HoldPlacedEventType,
		HoldCanceledEventType,
		HoldExpiredEventType,
		BookCheckedOutEventType,
		LoanRenewedEventType,
		LoanReturnedEventType,
	}
}
