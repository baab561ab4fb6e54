package withdrawcopies

import (
	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

// Decide implements the business logic of a withdrawal.
//
// Business Rules:
//
//	GIVEN: a title
//	WHEN: WithdrawCopies is received
//	THEN: CopiesWithdrawn is generated, Quantity copies leave the pool and the acquired total
//	ERROR: ErrInvalidQuantity if Quantity < 1
//	ERROR: ErrTitleNotFound if no copies were ever acquired
//	ERROR: ErrInsufficientCopies if fewer than Quantity copies are in the pool
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	if command.Quantity < 1 {
		return core.ErrorDecision(core.ErrInvalidQuantity)
	}

	s := core.ProjectTitle(command.BookID.String(), history)

	if !s.Exists {
		return core.ErrorDecision(core.ErrTitleNotFound)
	}

	if s.AvailableCopies < command.Quantity {
		return core.ErrorDecision(core.ErrInsufficientCopies)
	}

	return core.SuccessDecision(core.BuildCopiesWithdrawn(command.BookID, command.Quantity, command.OccurredAt))
}
