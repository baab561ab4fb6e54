package renewloan

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

// CommandHandler resolves the loan's title, then runs Renew as a retried round trip on that title.
type CommandHandler struct {
	eventStore   shell.EventStore
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(eventStore shell.EventStore, opts ...Option) CommandHandler {
	handler := CommandHandler{
		eventStore: eventStore,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle renews the loan. The receipt carries the new due date and renewal count.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	loanID := command.LoanID.String()

	bookID, err := shell.FindLoanTitle(ctx, h.eventStore, loanID)
	if err != nil {
		return shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	tx, retryMetrics, err := shell.RunTitleCommand(
		ctx,
		h.eventStore,
		bookID,
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command)
		},
		h.retryOptions...,
	)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(tx.Receipt("", loanID), retryMetrics), nil
}
