package patronloans

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// LoanInfo is one loan of the patron.
type LoanInfo struct {
	LoanID       core.LoanIDString
	BookID       core.BookIDString
	Quantity     int
	BorrowedAt   time.Time
	DueDate      time.Time
	ReturnedAt   time.Time
	RenewalCount int
	Status       core.LoanStatus
	LateFee      decimal.Decimal
}

// PatronLoans is the query result.
type PatronLoans struct {
	PatronID       core.PatronIDString
	Loans          []LoanInfo
	ActiveCount    int
	OverdueCount   int
	LateFeesTotal  decimal.Decimal
	SequenceNumber eventstore.MaxSequenceNumberUint
}
