package returnloan

import (
	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
)

// Decide implements the business logic of a return.
//
// Business Rules:
//
//	GIVEN: an active loan
//	WHEN: Return is received
//	THEN: LoanReturned is generated, Quantity copies go back into the pool
//	FEE: a return after the due date carries the policy late fee
//	ERROR: ErrLoanNotFound if the loan was never checked out
//	ERROR: ErrLoanNotActive if the loan was already returned
func Decide(history core.DomainEvents, command Command, p policy.Policy) core.DecisionResult {
	loanID := command.LoanID.String()

	bookID, ok := core.TitleOfLoan(history, loanID)
	if !ok {
		return core.ErrorDecision(core.ErrLoanNotFound)
	}

	loan := core.ProjectTitle(bookID, history).Loans[loanID]
	if !loan.IsActive() {
		return core.ErrorDecision(core.ErrLoanNotActive)
	}

	return core.SuccessDecision(core.BuildLoanReturned(
		command.LoanID,
		uuid.MustParse(loan.BookID),
		uuid.MustParse(loan.PatronID),
		loan.Quantity,
		p.LateFee(loan.DueDate, command.OccurredAt),
		command.OccurredAt,
	))
}
