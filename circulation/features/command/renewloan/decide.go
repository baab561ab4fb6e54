package renewloan

import (
	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
)

// Decide implements the business logic of a renewal.
//
// Business Rules:
//
//	GIVEN: an active loan
//	WHEN: Renew is received
//	THEN: LoanRenewed is generated with the new due date and renewalCount+1, the pool is untouched
//	ERROR: ErrLoanNotFound if the loan was never checked out
//	ERROR: ErrLoanNotActive if the loan was returned
//	ERROR: ErrRenewalLimitExceeded if the loan was renewed three times
//	ERROR: ErrRenewalWindowExceeded if the requested date is before the current due date or past the window
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	loanID := command.LoanID.String()

	bookID, ok := core.TitleOfLoan(history, loanID)
	if !ok {
		return core.ErrorDecision(core.ErrLoanNotFound)
	}

	s := core.ProjectTitle(bookID, history)

	loan := s.Loans[loanID]
	if !loan.IsActive() {
		return core.ErrorDecision(core.ErrLoanNotActive)
	}

	dueDate, err := policy.CheckRenewal(loan.RenewalCount, loan.DueDate, command.RequestedDueDate)
	if err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(core.BuildLoanRenewed(
		command.LoanID,
		uuid.MustParse(loan.BookID),
		uuid.MustParse(loan.PatronID),
		loan.DueDate,
		dueDate,
		loan.RenewalCount+1,
		command.OccurredAt,
	))
}
