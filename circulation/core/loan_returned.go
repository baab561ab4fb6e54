package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanReturnedEventType is the event type identifier.
const LoanReturnedEventType = "LoanReturned"

// LoanReturned closes a loan. Its Quantity copies return to the pool.
type LoanReturned struct {
	LoanID     LoanIDString
	BookID     BookIDString
	PatronID   PatronIDString
	Quantity   int
	LateFee    decimal.Decimal
	OccurredAt OccurredAtTS
}

// BuildLoanReturned creates a new LoanReturned event.
func BuildLoanReturned(
	loanID uuid.UUID,
	bookID uuid.UUID,
	patronID uuid.UUID,
	quantity int,
	lateFee decimal.Decimal,
	occurredAt time.Time,
) LoanReturned {

	return LoanReturned{
		LoanID:     loanID.String(),
		BookID:     bookID.String(),
		PatronID:   patronID.String(),
		Quantity:   quantity,
		LateFee:    lateFee,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e LoanReturned) EventType() string {
	return LoanReturnedEventType
}

func (e LoanReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

func (e LoanReturned) TitleID() BookIDString {
	return e.BookID
}
