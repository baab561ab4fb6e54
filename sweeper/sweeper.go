package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

// DefaultSchedule runs the sweep every five minutes.
const DefaultSchedule = "*/5 * * * *"

const (
	logMsgSweepSkipped  = "hold sweep skipped, lock held elsewhere"
	logMsgSweepFailed   = "hold sweep failed"
	logMsgUnlockFailed  = "releasing sweep lock failed"
	logMsgSweeperStart  = "hold sweeper started"
	logMsgSweeperStop   = "hold sweeper stopped"
	logAttrSchedule     = "schedule"
	logAttrError        = "error"
	logAttrFailedHolds  = "failed"
	logAttrExpiredHolds = "expired"
)

var (
	// ErrNilTarget is returned by New without something to sweep.
	ErrNilTarget = errors.New("sweeper needs a target")

	// ErrInvalidSchedule is returned for a schedule the five-field cron parser rejects.
	ErrInvalidSchedule = errors.New("invalid sweep schedule")

	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("sweeper already started")
)

// Target is what the sweeper drives. *engine.Engine implements it.
type Target interface {
	SweepExpiredHolds(ctx context.Context) (engine.SweepReport, error)
}

// Sweeper periodically expires lapsed holds.
type Sweeper struct {
	target   Target
	locker   Locker
	schedule string
	timeout  time.Duration
	parser   cron.Parser

	cron    *cron.Cron
	mu      sync.Mutex
	running bool

	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

// Option configures a Sweeper.
type Option func(*Sweeper) error

// WithSchedule sets a standard five-field cron schedule.
func WithSchedule(schedule string) Option {
	return func(s *Sweeper) error {
		if _, err := s.parser.Parse(schedule); err != nil {
			return errors.Join(ErrInvalidSchedule, err)
		}

		s.schedule = schedule

		return nil
	}
}

// WithLocker makes every run obtain the lock first.
func WithLocker(locker Locker) Option {
	return func(s *Sweeper) error {
		s.locker = locker
		return nil
	}
}

// WithRunTimeout bounds a single scheduled run. Zero means unbounded.
func WithRunTimeout(timeout time.Duration) Option {
	return func(s *Sweeper) error {
		s.timeout = timeout
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger shell.Logger) Option {
	return func(s *Sweeper) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger, which is preferred over the plain one.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *Sweeper) error {
		s.contextualLogger = logger
		return nil
	}
}

// New creates a Sweeper for target.
func New(target Target, opts ...Option) (*Sweeper, error) {
	if target == nil {
		return nil, ErrNilTarget
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s := &Sweeper{
		target:   target,
		schedule: DefaultSchedule,
		parser:   parser,
		cron:     cron.New(cron.WithParser(parser)),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RunOnce sweeps now, under the lock if there is one. It returns ErrLockHeld without sweeping
// when another instance holds the lock.
func (s *Sweeper) RunOnce(ctx context.Context) (engine.SweepReport, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx)
		if err != nil {
			return engine.SweepReport{}, err
		}

		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				shell.LogWarn(ctx, s.logger, s.contextualLogger, logMsgUnlockFailed, logAttrError, err.Error())
			}
		}()
	}

	return s.target.SweepExpiredHolds(ctx)
}

// Start schedules RunOnce. Runs derive from ctx; when ctx ends the sweeper stops.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyStarted
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.tick(ctx) }); err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}

	s.cron.Start()
	s.running = true

	shell.LogInfo(ctx, s.logger, s.contextualLogger, logMsgSweeperStart, logAttrSchedule, s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false

	shell.LogInfo(context.Background(), s.logger, s.contextualLogger, logMsgSweeperStop)
}

// Next returns the time of the next scheduled run, or false when the sweeper is not running.
func (s *Sweeper) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return time.Time{}, false
	}

	return entries[0].Next, true
}

func (s *Sweeper) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.RunOnce(ctx)

	switch {
	case errors.Is(err, ErrLockHeld):
		shell.LogInfo(ctx, s.logger, s.contextualLogger, logMsgSweepSkipped)
	case err != nil:
		shell.LogError(ctx, s.logger, s.contextualLogger, logMsgSweepFailed,
			logAttrError, err.Error(),
			logAttrExpiredHolds, report.Expired,
			logAttrFailedHolds, report.Failed,
		)
	}
}
