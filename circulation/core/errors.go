package core

import (
	"errors"
	"fmt"
)

// Rejections. Each one means nothing was written.
var (
	ErrInsufficientCopies    = errors.New("insufficient copies")
	ErrHoldNotActive         = errors.New("hold is not active")
	ErrHoldAlreadyActive     = errors.New("hold is already active")
	ErrHoldNotLapsed         = errors.New("hold has not passed its pickup deadline")
	ErrLoanNotActive         = errors.New("loan is not active")
	ErrRenewalLimitExceeded  = errors.New("renewal limit exceeded")
	ErrRenewalWindowExceeded = errors.New("renewal window exceeded")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrInvalidPickupDeadline = errors.New("pickup deadline must be in the future")
)

// ErrNotFound is wrapped by the concrete not-found errors below.
var ErrNotFound = errors.New("not found")

var (
	ErrTitleNotFound = fmt.Errorf("title %w", ErrNotFound)
	ErrLoanNotFound  = fmt.Errorf("loan %w", ErrNotFound)
	ErrHoldNotFound  = fmt.Errorf("hold %w", ErrNotFound)
)

// ErrTransactionConflict is transient: the title kept changing under the operation until the
// retries ran out. Re-reading and retrying is safe.
var ErrTransactionConflict = errors.New("transaction conflict")

// ErrInvariantViolated means a decision would have broken the copy ledger. It is never expected.
var ErrInvariantViolated = errors.New("copy ledger invariant violated")

// UserMessage maps an error returned by the engine to the message shown at the desk or in the patron UI.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientCopies):
		return "No copy of this title is available right now. Place a hold or try again later."
	case errors.Is(err, ErrHoldAlreadyActive):
		return "You already have an active hold on this title."
	case errors.Is(err, ErrHoldNotActive):
		return "This hold is no longer active. It was already picked up, canceled or expired."
	case errors.Is(err, ErrHoldNotLapsed):
		return "This hold is still within its pickup period."
	case errors.Is(err, ErrLoanNotActive):
		return "This loan has already been returned."
	case errors.Is(err, ErrRenewalLimitExceeded):
		return "This loan cannot be renewed again. Please return the book."
	case errors.Is(err, ErrRenewalWindowExceeded):
		return "The requested due date is outside the allowed renewal window. Pick an earlier date."
	case errors.Is(err, ErrInvalidQuantity):
		return "Please enter a quantity of at least one copy."
	case errors.Is(err, ErrInvalidPickupDeadline):
		return "The pickup deadline must lie in the future."
	case errors.Is(err, ErrTitleNotFound):
		return "This title is not in the catalog."
	case errors.Is(err, ErrLoanNotFound):
		return "No such loan exists."
	case errors.Is(err, ErrHoldNotFound):
		return "You have no hold on this title."
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist."
	case errors.Is(err, ErrTransactionConflict):
		return "The title was busy. Please try again in a moment."
	case errors.Is(err, ErrInvariantViolated):
		return "The operation was refused to protect the inventory. Please contact the library staff."
	default:
		return "The operation could not be completed. Please try again."
	}
}
