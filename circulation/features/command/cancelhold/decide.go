package cancelhold

import (
	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

// Decide implements the business logic of canceling a hold.
//
// Business Rules:
//
//	GIVEN: a patron with a hold on a title
//	WHEN: CancelHold is received
//	THEN: HoldCanceled is generated, the copy returns to the pool
//	ERROR: ErrTitleNotFound, ErrHoldNotFound if there is nothing to cancel
//	ERROR: ErrHoldNotActive if the hold was already canceled, fulfilled or expired
//	LAPSED HOLD: a hold past its pickup deadline is recorded as expired instead
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

	if hold.IsLapsed(command.OccurredAt) {
		return core.SuccessDecision(core.BuildHoldExpired(command.BookID, command.PatronID, hold.PickupBy, command.OccurredAt))
	}

	return core.SuccessDecision(core.BuildHoldCanceled(command.BookID, command.PatronID, command.OccurredAt))
}
