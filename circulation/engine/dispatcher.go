package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

const (
	logMsgDispatchDropped = "collaborator queue full, dropping"
	logMsgDispatchFailed  = "collaborator call failed"

	logAttrJob = "job"
)

// ErrDispatcherClosed is returned by Close when called twice.
var ErrDispatcherClosed = errors.New("dispatcher already closed")

type dispatchJob struct {
	name string
	ctx  context.Context
	run  func(ctx context.Context) error
}

// dispatcher runs collaborator calls on a fixed number of workers behind a bounded queue.
// Submit never blocks: a full queue drops the job with a warning.
type dispatcher struct {
	jobs             chan dispatchJob
	wg               sync.WaitGroup
	mu               sync.RWMutex
	closed           bool
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

func newDispatcher(queueSize, workers int, logger shell.Logger, contextualLogger shell.ContextualLogger) *dispatcher {
	d := &dispatcher{
		jobs:             make(chan dispatchJob, queueSize),
		logger:           logger,
		contextualLogger: contextualLogger,
	}

	for range workers {
		d.wg.Add(1)
		go d.work()
	}

	return d
}

func (d *dispatcher) work() {
	defer d.wg.Done()

	for job := range d.jobs {
		if err := job.run(job.ctx); err != nil {
			shell.LogWarn(job.ctx, d.logger, d.contextualLogger, logMsgDispatchFailed,
				logAttrJob, job.name,
				shell.LogAttrError, err.Error(),
			)
		}
	}
}

// submit detaches the job from ctx's cancellation, so a finished request does not abort its audit record.
func (d *dispatcher) submit(ctx context.Context, name string, run func(ctx context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	job := dispatchJob{name: name, ctx: context.WithoutCancel(ctx), run: run}

	if !d.closed {
		select {
		case d.jobs <- job:
			return true
		default:
		}
	}

	shell.LogWarn(ctx, d.logger, d.contextualLogger, logMsgDispatchDropped, logAttrJob, name)

	return false
}

// close stops accepting jobs and waits until the queue is drained or ctx is done.
func (d *dispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
