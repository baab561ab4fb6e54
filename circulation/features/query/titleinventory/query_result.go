package titleinventory

import (
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// HoldInfo is an active hold on the title.
type HoldInfo struct {
	PatronID   core.PatronIDString
	ReservedAt time.Time
	PickupBy   time.Time
	Lapsed     bool
}

// LoanInfo is an active loan of the title.
type LoanInfo struct {
	LoanID       core.LoanIDString
	PatronID     core.PatronIDString
	Quantity     int
	BorrowedAt   time.Time
	DueDate      time.Time
	RenewalCount int
	Status       core.LoanStatus
}

// TitleInventory is the query result.
type TitleInventory struct {
	BookID          core.BookIDString
	Title           string
	ISBN            core.ISBNString
	Status          core.CatalogStatus
	AvailableCopies int
	HeldUnits       int
	LentUnits       int
	TotalAcquired   int
	Holds           []HoldInfo
	Loans           []LoanInfo
	SequenceNumber  eventstore.MaxSequenceNumberUint
}
