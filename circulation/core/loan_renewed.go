package core

import (
	"time"

	"github.com/google/uuid"
)

// LoanRenewedEventType is the event type identifier.
const LoanRenewedEventType = "LoanRenewed"

// LoanRenewed moves a loan's due date. It does not touch the pool.
type LoanRenewed struct {
	LoanID          LoanIDString
	BookID          BookIDString
	PatronID        PatronIDString
	PreviousDueDate time.Time
	DueDate         time.Time
	RenewalCount    int
	OccurredAt      OccurredAtTS
}

// BuildLoanRenewed creates a new LoanRenewed event.
func BuildLoanRenewed(
	loanID uuid.UUID,
	bookID uuid.UUID,
	patronID uuid.UUID,
	previousDueDate time.Time,
	dueDate time.Time,
	renewalCount int,
	occurredAt time.Time,
) LoanRenewed {

	return LoanRenewed{
		LoanID:          loanID.String(),
		BookID:          bookID.String(),
		PatronID:        patronID.String(),
		PreviousDueDate: ToOccurredAt(previousDueDate),
		DueDate:         ToOccurredAt(dueDate),
		RenewalCount:    renewalCount,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

func (e LoanRenewed) EventType() string {
	return LoanRenewedEventType
}

func (e LoanRenewed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e LoanRenewed) TitleID() BookIDString {
	return e.BookID
}
