package titleinventory

import (
	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// Project implements the query logic. It is a pure function of the title's history.
//
// Query Logic:
//
//	GIVEN: All events of the title
//	WHEN: TitleInventory query is executed
//	THEN: the copy ledger, active holds ordered by reservation and active loans in checkout order
//	ERROR: ErrTitleNotFound if no copies were ever acquired
func Project(history core.DomainEvents, query Query, maxSequence eventstore.MaxSequenceNumberUint) (TitleInventory, error) {
	s := core.ProjectTitle(query.BookID.String(), history)
	if !s.Exists {
		return TitleInventory{}, core.ErrTitleNotFound
	}

	holds := make([]HoldInfo, 0)
	for _, hold := range s.ActiveHolds() {
		holds = append(holds, HoldInfo{
			PatronID:   hold.PatronID,
			ReservedAt: hold.ReservedAt,
			PickupBy:   hold.PickupBy,
			Lapsed:     hold.IsLapsed(query.At),
		})
	}

	loans := make([]LoanInfo, 0)
	for _, loan := range s.ActiveLoans() {
		loans = append(loans, LoanInfo{
			LoanID:       loan.LoanID,
			PatronID:     loan.PatronID,
			Quantity:     loan.Quantity,
			BorrowedAt:   loan.BorrowedAt,
			DueDate:      loan.DueDate,
			RenewalCount: loan.RenewalCount,
			Status:       loan.Status(query.At),
		})
	}

	return TitleInventory{
		BookID:          s.BookID,
		Title:           s.Title,
		ISBN:            s.ISBN,
		Status:          s.Status(),
		AvailableCopies: s.AvailableCopies,
		HeldUnits:       s.HeldUnits(),
		LentUnits:       s.LentUnits(),
		TotalAcquired:   s.TotalAcquired,
		Holds:           holds,
		Loans:           loans,
		SequenceNumber:  maxSequence,
	}, nil
}
