package checkout

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

// CommandHandler runs Checkout as one retried read-decide-append round trip on the title.
type CommandHandler struct {
	eventStore   shell.EventStore
	policy       policy.Policy
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
func NewCommandHandler(eventStore shell.EventStore, p policy.Policy, opts ...Option) CommandHandler {
	handler := CommandHandler{
		eventStore: eventStore,
		policy:     p,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle opens the loan. The receipt carries the loan id and due date.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	tx, retryMetrics, err := shell.RunTitleCommand(
		ctx,
		h.eventStore,
		command.BookID.String(),
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command, h.policy)
		},
		h.retryOptions...,
	)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(tx.Receipt(command.PatronID.String(), command.LoanID.String()), retryMetrics), nil
}
