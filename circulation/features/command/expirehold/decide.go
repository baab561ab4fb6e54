package expirehold

import (
	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

// Decide implements the business logic of a hold expiry.
//
// Business Rules:
//
//	GIVEN: an active hold whose pickup deadline has passed
//	WHEN: ExpireHold is received
//	THEN: HoldExpired is generated, one copy goes back into the pool
//	ERROR: ErrTitleNotFound if no copies were ever acquired
//	ERROR: ErrHoldNotFound if the patron never held the title
//	ERROR: ErrHoldNotActive if the hold is already closed
//	ERROR: ErrHoldNotLapsed if the pickup deadline has not passed yet
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := core.ProjectTitle(command.BookID.String(), history)

	if !s.Exists {
		return core.ErrorDecision(core.ErrTitleNotFound)
	}

	hold, ok := s.HoldOf(command.PatronID.String())
	if !ok {
		return core.ErrorDecision(core.ErrHoldNotFound)
	}

	if !hold.IsActive() {
		return core.ErrorDecision(core.ErrHoldNotActive)
	}

	if !hold.IsLapsed(command.OccurredAt) {
		return core.ErrorDecision(core.ErrHoldNotLapsed)
	}

	return core.SuccessDecision(core.BuildHoldExpired(command.BookID, command.PatronID, hold.PickupBy, command.OccurredAt))
}
