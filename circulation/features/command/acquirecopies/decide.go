package acquirecopies

import (
	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

// Decide implements the business logic of an acquisition.
//
// Business Rules:
//
//	GIVEN: any title, known or not
//	WHEN: AcquireCopies is received
//	THEN: CopiesAcquired is generated, Quantity copies join the pool
//	ERROR: ErrInvalidQuantity if Quantity < 1
func Decide(_ core.DomainEvents, command Command) core.DecisionResult {
	if command.Quantity < 1 {
		return core.ErrorDecision(core.ErrInvalidQuantity)
	}

	return core.SuccessDecision(core.BuildCopiesAcquired(
		command.BookID,
		command.Title,
		command.ISBN,
		command.Quantity,
		command.OccurredAt,
	))
}
