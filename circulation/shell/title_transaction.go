package shell

import (
	"context"
	"errors"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	predicateBookID   = "BookID"
	predicateLoanID   = "LoanID"
	predicatePatronID = "PatronID"
)

// TitleBoundary is the dynamic consistency boundary of one title: all circulation events
// with its BookID. Every command reads and appends with this filter, which serializes all
// operations on a title and leaves other titles untouched.
func TitleBoundary(bookID core.BookIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.EventTypes()[0], core.EventTypes()[1:]...).
		AndAnyPredicateOf(eventstore.P(predicateBookID, bookID)).
		Finalize()
}

// LoanLookupFilter finds the checkout that opened a loan, which tells Renew and Return the title.
func LoanLookupFilter(loanID core.LoanIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.BookCheckedOutEventType).
		AndAnyPredicateOf(eventstore.P(predicateLoanID, loanID)).
		Finalize()
}

// PatronFilter selects the checkout and return events of one patron across all titles.
func PatronFilter(patronID core.PatronIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.BookCheckedOutEventType, core.LoanRenewedEventType, core.LoanReturnedEventType).
		AndAnyPredicateOf(eventstore.P(predicatePatronID, patronID)).
		Finalize()
}

// HoldEventsFilter selects all hold events of all titles.
func HoldEventsFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.HoldPlacedEventType,
			core.HoldCanceledEventType,
			core.HoldExpiredEventType,
			core.BookCheckedOutEventType,
		).
		Finalize()
}

// LoadedTitle is the history of a title and the sequence number it was read at.
type LoadedTitle struct {
	Filter  eventstore.Filter
	History core.DomainEvents
	MaxSeq  eventstore.MaxSequenceNumberUint
}

// State projects the loaded history.
func (t LoadedTitle) State(bookID core.BookIDString) core.TitleState {
	return core.ProjectTitle(bookID, t.History)
}

// LoadTitle reads a title's history with strong consistency.
func LoadTitle(ctx context.Context, store QueriesEvents, bookID core.BookIDString) (LoadedTitle, error) {
	filter := TitleBoundary(bookID)

	storableEvents, maxSeq, err := store.Query(eventstore.WithStrongConsistency(ctx), filter)
	if err != nil {
		return LoadedTitle{}, errors.Join(ErrLoadingTitleFailed, err)
	}

	history, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return LoadedTitle{}, errors.Join(ErrLoadingTitleFailed, err)
	}

	return LoadedTitle{Filter: filter, History: history, MaxSeq: maxSeq}, nil
}

// FindLoanTitle returns the title a loan belongs to, or core.ErrLoanNotFound.
func FindLoanTitle(ctx context.Context, store QueriesEvents, loanID core.LoanIDString) (core.BookIDString, error) {
	storableEvents, _, err := store.Query(eventstore.WithStrongConsistency(ctx), LoanLookupFilter(loanID))
	if err != nil {
		return "", errors.Join(ErrLoadingTitleFailed, err)
	}

	if len(storableEvents) == 0 {
		return "", core.ErrLoanNotFound
	}

	event, err := DomainEventFrom(storableEvents[0])
	if err != nil {
		return "", errors.Join(ErrLoadingTitleFailed, err)
	}

	return event.TitleID(), nil
}

// AppendDecision appends the decided events iff the title is still at title.MaxSeq.
//
// Before writing it replays the new events on top of the loaded state and refuses to append
// anything that would break the copy ledger equation.
func AppendDecision(
	ctx context.Context,
	store EventStore,
	bookID core.BookIDString,
	title LoadedTitle,
	events core.DomainEvents,
	metadata EventMetadata,
) (core.TitleState, error) {
	after := core.ProjectTitle(bookID, append(append(core.DomainEvents{}, title.History...), events...))
	if err := after.CheckInvariant(); err != nil {
		return core.TitleState{}, err
	}

	storableEvents, err := StorableEventsFrom(events, metadata)
	if err != nil {
		return core.TitleState{}, err
	}

	if len(storableEvents) == 0 {
		return after, nil
	}

	if err := store.Append(ctx, title.Filter, title.MaxSeq, storableEvents[0], storableEvents[1:]...); err != nil {
		return core.TitleState{}, err
	}

	return after, nil
}

// ConflictAfterRetries turns an exhausted concurrency conflict into the transient error callers see.
func ConflictAfterRetries(err error) error {
	if errors.Is(err, eventstore.ErrConcurrencyConflict) && !errors.Is(err, core.ErrTransactionConflict) {
		return errors.Join(core.ErrTransactionConflict, err)
	}

	return err
}
