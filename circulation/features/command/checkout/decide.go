package checkout

import (
	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
)

// Decide implements the business logic of a checkout.
//
// Business Rules:
//
//	GIVEN: a title and a patron
//	WHEN: Checkout is received
//	THEN: BookCheckedOut is generated with the policy due date
//	HOLD: with an active hold the loan fulfills it and only Quantity-1 copies leave the pool
//	ERROR: ErrInvalidQuantity if Quantity < 1
//	ERROR: ErrTitleNotFound if no copies were ever acquired
//	ERROR: ErrInsufficientCopies if the pool cannot cover the copies still needed
//	LAPSED HOLD: a hold past its pickup deadline is expired in the same append and not fulfilled
func Decide(history core.DomainEvents, command Command, p policy.Policy) core.DecisionResult {
	if command.Quantity < 1 {
		return core.ErrorDecision(core.ErrInvalidQuantity)
	}

	s := core.ProjectTitle(command.BookID.String(), history)
	now := command.OccurredAt

	if !s.Exists {
		return core.ErrorDecision(core.ErrTitleNotFound)
	}

	var events core.DomainEvents

	fulfillsHold := false

	if hold, ok := s.HoldOf(command.PatronID.String()); ok && hold.IsActive() {
		if hold.IsLapsed(now) {
			expired := core.BuildHoldExpired(command.BookID, command.PatronID, hold.PickupBy, now)
			events = append(events, expired)
			s = s.Apply(expired)
		} else {
			fulfillsHold = true
		}
	}

	needed := command.Quantity
	if fulfillsHold {
		needed--
	}

	if s.AvailableCopies < needed {
		return core.ErrorDecision(core.ErrInsufficientCopies)
	}

	events = append(events, core.BuildBookCheckedOut(
		command.LoanID,
		command.BookID,
		command.PatronID,
		command.Quantity,
		p.DueDate(now),
		fulfillsHold,
		now,
	))

	return core.SuccessDecision(events[0], events[1:]...)
}
