package expirehold

import (
	"context"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

// CommandHandler handles ExpireHold. The hold sweeper calls it once per lapsed hold.
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

// Handle expires the hold.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	tx, retryMetrics, err := shell.RunTitleCommand(
		ctx,
		h.eventStore,
		command.BookID.String(),
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command)
		},
		h.retryOptions...,
	)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(tx.Receipt(command.PatronID.String(), ""), retryMetrics), nil
}
