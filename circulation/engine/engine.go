package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/acquirecopies"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/cancelhold"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/checkout"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/expirehold"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/renewloan"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/reservecopy"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/returnloan"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/withdrawcopies"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/query/lapsedholds"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/query/patronloans"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/query/titleinventory"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell/observable"
)

// Receipt is what a committed operation reports back.
type Receipt = shell.Receipt

// ErrNilEventStore is returned by New without an event store.
var ErrNilEventStore = errors.New("event store must not be nil")

// ContextWithActor attaches the authenticated patron or staff id supplied by the auth collaborator.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	return shell.ContextWithActor(ctx, actorID)
}

// Engine exposes the circulation operations and read models over one event store.
// It is safe for concurrent use.
type Engine struct {
	store        shell.EventStore
	policy       policy.Policy
	retryOptions []shell.RetryOption
	now          func() time.Time

	notifier          Notifier
	auditLog          AuditLog
	dispatchQueueSize int
	dispatchWorkers   int
	dispatcher        *dispatcher

	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger

	acquireCopies  shell.CommandHandler[acquirecopies.Command]
	withdrawCopies shell.CommandHandler[withdrawcopies.Command]
	reserve        shell.CommandHandler[reservecopy.Command]
	cancelHold     shell.CommandHandler[cancelhold.Command]
	checkout       shell.CommandHandler[checkout.Command]
	renew          shell.CommandHandler[renewloan.Command]
	returnLoan     shell.CommandHandler[returnloan.Command]
	expireHold     shell.CommandHandler[expirehold.Command]

	titleInventory shell.QueryHandler[titleinventory.Query, titleinventory.TitleInventory]
	patronLoans    shell.QueryHandler[patronloans.Query, patronloans.PatronLoans]
	lapsedHolds    shell.QueryHandler[lapsedholds.Query, lapsedholds.LapsedHolds]
}

// New builds an Engine on store, which is usually a postgresengine.EventStore or a memengine.EventStore.
func New(store shell.EventStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilEventStore
	}

	e := &Engine{
		store:             store,
		policy:            policy.Default(),
		now:               time.Now,
		dispatchQueueSize: defaultDispatchQueueSize,
		dispatchWorkers:   defaultDispatchWorkers,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if err := e.buildHandlers(); err != nil {
		return nil, err
	}

	e.dispatcher = newDispatcher(e.dispatchQueueSize, e.dispatchWorkers, e.logger, e.contextualLogger)

	return e, nil
}

func (e *Engine) buildHandlers() error {
	var err error

	if e.acquireCopies, err = wrapCommand[acquirecopies.Command](e, acquirecopies.NewCommandHandler(e.store,
		acquirecopies.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.withdrawCopies, err = wrapCommand[withdrawcopies.Command](e, withdrawcopies.NewCommandHandler(e.store,
		withdrawcopies.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.reserve, err = wrapCommand[reservecopy.Command](e, reservecopy.NewCommandHandler(e.store, e.policy,
		reservecopy.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.cancelHold, err = wrapCommand[cancelhold.Command](e, cancelhold.NewCommandHandler(e.store,
		cancelhold.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.checkout, err = wrapCommand[checkout.Command](e, checkout.NewCommandHandler(e.store, e.policy,
		checkout.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.renew, err = wrapCommand[renewloan.Command](e, renewloan.NewCommandHandler(e.store,
		renewloan.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.returnLoan, err = wrapCommand[returnloan.Command](e, returnloan.NewCommandHandler(e.store, e.policy,
		returnloan.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.expireHold, err = wrapCommand[expirehold.Command](e, expirehold.NewCommandHandler(e.store,
		expirehold.WithRetryOptions(e.retryOptions...))); err != nil {
		return err
	}

	if e.titleInventory, err = wrapQuery[titleinventory.Query, titleinventory.TitleInventory](e, titleinventory.NewQueryHandler(e.store)); err != nil {
		return err
	}

	if e.patronLoans, err = wrapQuery[patronloans.Query, patronloans.PatronLoans](e, patronloans.NewQueryHandler(e.store)); err != nil {
		return err
	}

	if e.lapsedHolds, err = wrapQuery[lapsedholds.Query, lapsedholds.LapsedHolds](e, lapsedholds.NewQueryHandler(e.store)); err != nil {
		return err
	}

	return nil
}

func wrapCommand[C shell.Command](e *Engine, handler shell.CommandHandler[C]) (shell.CommandHandler[C], error) {
	return observable.NewCommandWrapper(handler,
		observable.WithCommandMetrics[C](e.metricsCollector),
		observable.WithCommandTracing[C](e.tracingCollector),
		observable.WithCommandContextualLogging[C](e.contextualLogger),
		observable.WithCommandLogging[C](e.logger),
	)
}

func wrapQuery[Q shell.Query, R any](e *Engine, handler shell.QueryHandler[Q, R]) (shell.QueryHandler[Q, R], error) {
	return observable.NewQueryWrapper(handler,
		observable.WithQueryMetrics[Q, R](e.metricsCollector),
		observable.WithQueryTracing[Q, R](e.tracingCollector),
		observable.WithQueryContextualLogging[Q, R](e.contextualLogger),
		observable.WithQueryLogging[Q, R](e.logger),
	)
}

// AcquireCopies adds quantity copies of a title, creating its catalog record on first use.
func (e *Engine) AcquireCopies(ctx context.Context, bookID uuid.UUID, title, isbn string, quantity int) (Receipt, error) {
	command := acquirecopies.BuildCommand(bookID, title, isbn, quantity, e.now())

	return run(ctx, e, OperationAcquireCopies, e.acquireCopies, command)
}

// WithdrawCopies removes quantity lendable copies of a title.
func (e *Engine) WithdrawCopies(ctx context.Context, bookID uuid.UUID, quantity int) (Receipt, error) {
	command := withdrawcopies.BuildCommand(bookID, quantity, e.now())

	return run(ctx, e, OperationWithdrawCopies, e.withdrawCopies, command)
}

// Reserve places a hold and takes one copy out of the pool. A zero pickupBy means the policy default.
func (e *Engine) Reserve(ctx context.Context, patronID, bookID uuid.UUID, pickupBy time.Time) (Receipt, error) {
	command := reservecopy.BuildCommand(bookID, patronID, pickupBy, e.now())

	return run(ctx, e, OperationReserve, e.reserve, command)
}

// CancelHold cancels the patron's active hold and puts its copy back.
func (e *Engine) CancelHold(ctx context.Context, patronID, bookID uuid.UUID) (Receipt, error) {
	command := cancelhold.BuildCommand(bookID, patronID, e.now())

	return run(ctx, e, OperationCancelHold, e.cancelHold, command)
}

// Checkout lends quantity copies, fulfilling the patron's active hold if there is one.
func (e *Engine) Checkout(ctx context.Context, patronID, bookID uuid.UUID, quantity int) (Receipt, error) {
	command := checkout.BuildCommand(bookID, patronID, quantity, e.now())

	return run(ctx, e, OperationCheckout, e.checkout, command)
}

// Renew moves the due date of an active loan. A zero requestedDueDate asks for the latest allowed date.
func (e *Engine) Renew(ctx context.Context, loanID uuid.UUID, requestedDueDate time.Time) (Receipt, error) {
	command := renewloan.BuildCommand(loanID, requestedDueDate, e.now())

	return run(ctx, e, OperationRenew, e.renew, command)
}

// Return closes an active loan and puts its copies back.
func (e *Engine) Return(ctx context.Context, loanID uuid.UUID) (Receipt, error) {
	command := returnloan.BuildCommand(loanID, e.now())

	return run(ctx, e, OperationReturn, e.returnLoan, command)
}

// ExpireHold expires a hold whose pickup deadline has passed.
func (e *Engine) ExpireHold(ctx context.Context, patronID, bookID uuid.UUID) (Receipt, error) {
	command := expirehold.BuildCommand(bookID, patronID, e.now())

	return run(ctx, e, OperationExpireHold, e.expireHold, command)
}

func run[C shell.Command](
	ctx context.Context,
	e *Engine,
	operation Operation,
	handler shell.CommandHandler[C],
	command C,
) (Receipt, error) {
	result, err := handler.Handle(ctx, command)
	if err != nil {
		return Receipt{}, err
	}

	e.afterCommit(ctx, operation, result.Receipt)

	return result.Receipt, nil
}

func (e *Engine) afterCommit(ctx context.Context, operation Operation, receipt Receipt) {
	if e.auditLog != nil {
		record := auditRecordFrom(operation, shell.ActorFrom(ctx), receipt)
		e.dispatcher.submit(ctx, "audit:"+string(operation), func(ctx context.Context) error {
			return e.auditLog.Record(ctx, record)
		})
	}

	if e.notifier == nil {
		return
	}

	if notification, ok := notificationFor(operation, receipt); ok {
		e.dispatcher.submit(ctx, "notify:"+string(notification.Kind), func(ctx context.Context) error {
			return e.notifier.Notify(ctx, notification)
		})
	}
}

// Title returns the catalog record view of a title.
func (e *Engine) Title(ctx context.Context, bookID uuid.UUID) (titleinventory.TitleInventory, error) {
	return e.titleInventory.Handle(ctx, titleinventory.BuildQuery(bookID, e.now()))
}

// PatronLoans returns the loans of a patron across all titles.
func (e *Engine) PatronLoans(ctx context.Context, patronID uuid.UUID, includeReturned bool) (patronloans.PatronLoans, error) {
	return e.patronLoans.Handle(ctx, patronloans.BuildQuery(patronID, e.now(), includeReturned))
}

// LapsedHolds returns the active holds whose pickup deadline has passed.
func (e *Engine) LapsedHolds(ctx context.Context) (lapsedholds.LapsedHolds, error) {
	return e.lapsedHolds.Handle(ctx, lapsedholds.BuildQuery(e.now()))
}

// Policy returns the policy the engine decides with.
func (e *Engine) Policy() policy.Policy {
	return e.policy
}

// Close stops the collaborator dispatcher after draining queued calls, or when ctx is done.
func (e *Engine) Close(ctx context.Context) error {
	return e.dispatcher.close(ctx)
}
