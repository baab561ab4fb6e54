package shell

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

// TitleDecider is a feature's pure decision, bound to its command and policy.
type TitleDecider func(history core.DomainEvents) core.DecisionResult

// TitleTransaction is one committed read-decide-append round trip on a title.
type TitleTransaction struct {
	BookID core.BookIDString
	Before core.TitleState
	After  core.TitleState
	Events core.DomainEvents
}

// RunTitleCommand loads the title, decides and appends conditionally, retrying the whole round trip
// on concurrency conflicts. Rejections are returned as they are and nothing is written.
func RunTitleCommand(
	ctx context.Context,
	store EventStore,
	bookID core.BookIDString,
	decide TitleDecider,
	retryOptions ...RetryOption,
) (TitleTransaction, RetryMetrics, error) {
	var tx TitleTransaction

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		tx, execErr = executeTitleCommand(retryCtx, store, bookID, decide)

		return execErr
	}, retryOptions...)

	if err != nil {
		return TitleTransaction{}, retryMetrics, ConflictAfterRetries(err)
	}

	return tx, retryMetrics, nil
}

func executeTitleCommand(
	ctx context.Context,
	store EventStore,
	bookID core.BookIDString,
	decide TitleDecider,
) (TitleTransaction, error) {
	title, err := LoadTitle(ctx, store, bookID)
	if err != nil {
		return TitleTransaction{}, err
	}

	result := decide(title.History)
	if err := result.HasError(); err != nil {
		return TitleTransaction{}, err
	}

	after, err := AppendDecision(ctx, store, bookID, title, result.Events, NewEventMetadata(ActorFrom(ctx)))
	if err != nil {
		return TitleTransaction{}, err
	}

	return TitleTransaction{
		BookID: bookID,
		Before: title.State(bookID),
		After:  after,
		Events: result.Events,
	}, nil
}

// Receipt summarizes the transaction for patronID and, if set, loanID.
func (tx TitleTransaction) Receipt(patronID core.PatronIDString, loanID core.LoanIDString) Receipt {
	receipt := Receipt{
		BookID:       tx.BookID,
		PatronID:     patronID,
		LoanID:       loanID,
		CopiesBefore: tx.Before.AvailableCopies,
		CopiesAfter:  tx.After.AvailableCopies,
	}

	if loan, ok := tx.After.Loans[loanID]; ok && loanID != "" {
		receipt.PatronID = loan.PatronID
		receipt.DueDate = loan.DueDate
		receipt.RenewalCount = loan.RenewalCount
		receipt.LateFee = loan.LateFee
	}

	if hold, ok := tx.After.HoldOf(receipt.PatronID); ok && hold.IsActive() {
		receipt.PickupBy = hold.PickupBy
	}

	for _, event := range tx.Events {
		if e, ok := event.(core.HoldExpired); ok && e.PatronID == receipt.PatronID {
			receipt.ExpiredHold = true
		}

		receipt.OccurredAt = event.HasOccurredAt()
	}

	return receipt
}
