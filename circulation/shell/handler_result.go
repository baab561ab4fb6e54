package shell

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

// Receipt is what a committed circulation operation reports back to the desk or patron UI,
// and what the audit and notification collaborators are fed from.
type Receipt struct {
	BookID       core.BookIDString
	PatronID     core.PatronIDString
	LoanID       core.LoanIDString
	CopiesBefore int
	CopiesAfter  int
	DueDate      time.Time
	PickupBy     time.Time
	RenewalCount int
	LateFee      decimal.Decimal

	// ExpiredHold is set when a lapsed hold of the patron was expired as part of the operation.
	ExpiredHold bool
	OccurredAt  time.Time
}

// HandlerResult is the outcome of a command handler: the receipt of the committed operation plus
// the retry metadata the observable wrapper turns into metrics.
type HandlerResult struct {
	Receipt Receipt

	// RetryAttempts is the total number of attempts made (1 for no retries).
	RetryAttempts int

	// TotalRetryDelay is the time spent sleeping between attempts.
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true only when every attempt ended in a concurrency conflict.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for a committed operation.
func NewSuccessResult(receipt Receipt, retryMetrics RetryMetrics) HandlerResult {
	result := NewErrorResult(retryMetrics)
	result.Receipt = receipt

	return result
}

// NewErrorResult creates a HandlerResult for a failed operation, keeping the retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
