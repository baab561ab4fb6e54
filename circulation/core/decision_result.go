package core

// DecisionResult is the outcome of a Decide function: either the events to append or the rejection.
//
// Only construct it with SuccessDecision or ErrorDecision.
type DecisionResult struct {
	Events DomainEvents
	Err    error
}

// SuccessDecision carries the events to append atomically, in order.
func SuccessDecision(event DomainEvent, additional ...DomainEvent) DecisionResult {
	return DecisionResult{
		Events: append(DomainEvents{event}, additional...),
	}
}

// ErrorDecision carries a business rule violation. Nothing is appended.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{Err: err}
}

// HasEventsToAppend returns true if there are events to append to the event store.
func (r DecisionResult) HasEventsToAppend() bool {
	return r.Err == nil && len(r.Events) > 0
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	return r.Err
}
