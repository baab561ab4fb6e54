package reservecopy

import (
	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
)

// Decide implements the business logic of placing a hold.
//
// Business Rules:
//
//	GIVEN: a title and a patron
//	WHEN: Reserve is received
//	THEN: HoldPlaced is generated, one copy leaves the pool
//	ERROR: ErrTitleNotFound if no copies were ever acquired
//	ERROR: ErrInvalidPickupDeadline if the pickup deadline is not after now
//	ERROR: ErrHoldAlreadyActive if the patron already holds this title
//	ERROR: ErrInsufficientCopies if no copy is available
//	LAPSED HOLD: a previous hold past its pickup deadline is expired in the same append
func Decide(history core.DomainEvents, command Command, p policy.Policy) core.DecisionResult {
	s := core.ProjectTitle(command.BookID.String(), history)
	now := command.OccurredAt

	if !s.Exists {
		return core.ErrorDecision(core.ErrTitleNotFound)
	}

	pickupBy := p.HoldExpiryDeadline(now, command.PickupBy)
	if !pickupBy.After(now) {
		return core.ErrorDecision(core.ErrInvalidPickupDeadline)
	}

	var events core.DomainEvents

	if hold, ok := s.HoldOf(command.PatronID.String()); ok && hold.IsActive() {
		if !hold.IsLapsed(now) {
			return core.ErrorDecision(core.ErrHoldAlreadyActive)
		}

		expired := core.BuildHoldExpired(command.BookID, command.PatronID, hold.PickupBy, now)
		events = append(events, expired)
		s = s.Apply(expired)
	}

	if s.AvailableCopies < 1 {
		return core.ErrorDecision(core.ErrInsufficientCopies)
	}

	events = append(events, core.BuildHoldPlaced(command.BookID, command.PatronID, pickupBy, now))

	return core.SuccessDecision(events[0], events[1:]...)
}
