package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogStatus is derived from the copy counter and never stored.
type CatalogStatus string

const (
	StatusAvailable   CatalogStatus = "Available"
	StatusUnavailable CatalogStatus = "Unavailable"
)

// HoldStatus is the state of a hold. Everything except HoldStatusReserved is terminal.
type HoldStatus string

const (
	HoldStatusReserved  HoldStatus = "reserved"
	HoldStatusCanceled  HoldStatus = "cancelled"
	HoldStatusFulfilled HoldStatus = "fulfilled"
	HoldStatusExpired   HoldStatus = "expired"
)

// LoanStatus is the display label of a loan, derived on read.
type LoanStatus string

const (
	LoanStatusBorrowed LoanStatus = "borrowed"
	LoanStatusRenewed  LoanStatus = "renewed"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusReturned LoanStatus = "returned"
)

// Hold is the latest hold of one patron on one title.
type Hold struct {
	BookID     BookIDString
	PatronID   PatronIDString
	Status     HoldStatus
	ReservedAt time.Time
	PickupBy   time.Time
	ClosedAt   time.Time
}

// IsActive reports whether the hold still takes a unit out of the pool.
func (h Hold) IsActive() bool {
	return h.Status == HoldStatusReserved
}

// IsLapsed reports whether the hold is active but its pickup deadline has passed at now.
func (h Hold) IsLapsed(now time.Time) bool {
	return h.IsActive() && now.After(h.PickupBy)
}

// Loan is one checkout of one or more copies.
type Loan struct {
	LoanID        LoanIDString
	BookID        BookIDString
	PatronID      PatronIDString
	Quantity      int
	BorrowedAt    time.Time
	DueDate       time.Time
	ReturnedAt    time.Time
	RenewalCount  int
	FulfilledHold bool
	LateFee       decimal.Decimal
}

// IsActive reports whether the loan still takes Quantity units out of the pool.
func (l Loan) IsActive() bool {
	return l.ReturnedAt.IsZero()
}

// Status derives the display label: returned, overdue if the due date has passed,
// renewed if it was renewed at least once, borrowed otherwise.
func (l Loan) Status(now time.Time) LoanStatus {
	switch {
	case !l.IsActive():
		return LoanStatusReturned
	case l.DueDate.Before(now):
		return LoanStatusOverdue
	case l.RenewalCount > 0:
		return LoanStatusRenewed
	default:
		return LoanStatusBorrowed
	}
}

// TitleState is the catalog record of one title with its holds and loans, folded from the title's events.
type TitleState struct {
	BookID          BookIDString
	Title           string
	ISBN            ISBNString
	Exists          bool
	TotalAcquired   int
	AvailableCopies int
	Holds           map[PatronIDString]Hold
	Loans           map[LoanIDString]Loan
	loanOrder       []LoanIDString
}

// ProjectTitle folds the history of one title. Events of other titles are ignored.
func ProjectTitle(bookID BookIDString, history DomainEvents) TitleState {
	s := TitleState{
		BookID: bookID,
		Holds:  make(map[PatronIDString]Hold),
		Loans:  make(map[LoanIDString]Loan),
	}

	for _, event := range history {
		if event.TitleID() != bookID {
			continue
		}

		s.apply(event)
	}

	return s
}

// ProjectTitles folds a history that spans several titles, one state per title in order of first appearance.
func ProjectTitles(history DomainEvents) []TitleState {
	index := make(map[BookIDString]int)
	states := make([]TitleState, 0)

	for _, event := range history {
		i, ok := index[event.TitleID()]
		if !ok {
			i = len(states)
			index[event.TitleID()] = i
			states = append(states, TitleState{
				BookID: event.TitleID(),
				Holds:  make(map[PatronIDString]Hold),
				Loans:  make(map[LoanIDString]Loan),
			})
		}

		states[i].apply(event)
	}

	return states
}

// Apply returns the state after event. The maps are copied, so s itself is left unchanged.
func (s TitleState) Apply(event DomainEvent) TitleState {
	next := s.clone()
	next.apply(event)

	return next
}

func (s *TitleState) apply(event DomainEvent) {
	switch e := event.(type) {
	case CopiesAcquired:
		s.Exists = true
		if e.Title != "" {
			s.Title = e.Title
		}
		if e.ISBN != "" {
			s.ISBN = e.ISBN
		}
		s.TotalAcquired += e.Quantity
		s.AvailableCopies += e.Quantity

	case CopiesWithdrawn:
		s.TotalAcquired -= e.Quantity
		s.AvailableCopies -= e.Quantity

	case HoldPlaced:
		s.Holds[e.PatronID] = Hold{
			BookID:     e.BookID,
			PatronID:   e.PatronID,
			Status:     HoldStatusReserved,
			ReservedAt: e.OccurredAt,
			PickupBy:   e.PickupBy,
		}
		s.AvailableCopies--

	case HoldCanceled:
		s.closeHold(e.PatronID, HoldStatusCanceled, e.OccurredAt)
		s.AvailableCopies++

	case HoldExpired:
		s.closeHold(e.PatronID, HoldStatusExpired, e.OccurredAt)
		s.AvailableCopies++

	case BookCheckedOut:
		if e.FulfilledHold {
			s.closeHold(e.PatronID, HoldStatusFulfilled, e.OccurredAt)
		}
		s.Loans[e.LoanID] = Loan{
			LoanID:        e.LoanID,
			BookID:        e.BookID,
			PatronID:      e.PatronID,
			Quantity:      e.Quantity,
			BorrowedAt:    e.OccurredAt,
			DueDate:       e.DueDate,
			FulfilledHold: e.FulfilledHold,
		}
		s.loanOrder = append(s.loanOrder, e.LoanID)
		s.AvailableCopies -= e.PoolDecrement()

	case LoanRenewed:
		if loan, ok := s.Loans[e.LoanID]; ok {
			loan.DueDate = e.DueDate
			loan.RenewalCount = e.RenewalCount
			s.Loans[e.LoanID] = loan
		}

	case LoanReturned:
		if loan, ok := s.Loans[e.LoanID]; ok {
			loan.ReturnedAt = e.OccurredAt
			loan.LateFee = e.LateFee
			s.Loans[e.LoanID] = loan
		}
		s.AvailableCopies += e.Quantity
	}
}

func (s *TitleState) closeHold(patronID PatronIDString, status HoldStatus, at time.Time) {
	if hold, ok := s.Holds[patronID]; ok {
		hold.Status = status
		hold.ClosedAt = at
		s.Holds[patronID] = hold
	}
}

func (s TitleState) clone() TitleState {
	holds := make(map[PatronIDString]Hold, len(s.Holds))
	for k, v := range s.Holds {
		holds[k] = v
	}

	loans := make(map[LoanIDString]Loan, len(s.Loans))
	for k, v := range s.Loans {
		loans[k] = v
	}

	s.Holds = holds
	s.Loans = loans
	s.loanOrder = slices.Clone(s.loanOrder)

	return s
}

// Status is Available iff at least one copy can be lent.
func (s TitleState) Status() CatalogStatus {
	if s.AvailableCopies > 0 {
		return StatusAvailable
	}

	return StatusUnavailable
}

// HoldOf returns the latest hold of patronID, active or not.
func (s TitleState) HoldOf(patronID PatronIDString) (Hold, bool) {
	hold, ok := s.Holds[patronID]
	return hold, ok
}

// ActiveHolds returns the active holds ordered by reservation time.
func (s TitleState) ActiveHolds() []Hold {
	holds := make([]Hold, 0)

	for _, hold := range s.Holds {
		if hold.IsActive() {
			holds = append(holds, hold)
		}
	}

	slices.SortFunc(holds, func(a, b Hold) int {
		if c := a.ReservedAt.Compare(b.ReservedAt); c != 0 {
			return c
		}

		if a.PatronID < b.PatronID {
			return -1
		}

		return 1
	})

	return holds
}

// ActiveLoans returns the active loans in checkout order.
func (s TitleState) ActiveLoans() []Loan {
	loans := make([]Loan, 0)

	for _, id := range s.loanOrder {
		if loan := s.Loans[id]; loan.IsActive() {
			loans = append(loans, loan)
		}
	}

	return loans
}

// HeldUnits is the number of copies taken out of the pool by active holds.
func (s TitleState) HeldUnits() int {
	return len(s.ActiveHolds())
}

// LentUnits is the number of copies taken out of the pool by active loans.
func (s TitleState) LentUnits() int {
	units := 0

	for _, loan := range s.ActiveLoans() {
		units += loan.Quantity
	}

	return units
}

// CheckInvariant verifies availableCopies >= 0 and available + held + lent == total acquired.
func (s TitleState) CheckInvariant() error {
	if s.AvailableCopies < 0 {
		return fmt.Errorf("%w: title %s has %d available copies", ErrInvariantViolated, s.BookID, s.AvailableCopies)
	}

	held, lent := s.HeldUnits(), s.LentUnits()
	if s.AvailableCopies+held+lent != s.TotalAcquired {
		return fmt.Errorf(
			"%w: title %s has %d available + %d held + %d lent != %d acquired",
			ErrInvariantViolated, s.BookID, s.AvailableCopies, held, lent, s.TotalAcquired,
		)
	}

	return nil
}

// TitleOfLoan returns the title a loan was checked out from.
func TitleOfLoan(history DomainEvents, loanID LoanIDString) (BookIDString, bool) {
	for _, event := range history {
		if e, ok := event.(BookCheckedOut); ok && e.LoanID == loanID {
			return e.BookID, true
		}
	}

	return "", false
}
