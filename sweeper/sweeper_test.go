package sweeper_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/memengine"
	"github.com/Agihtaws/OpenShelf-sub001/sweeper"
)

type targetSpy struct {
	calls  atomic.Int32
	report engine.SweepReport
	err    error
}

func (t *targetSpy) SweepExpiredHolds(context.Context) (engine.SweepReport, error) {
	t.calls.Add(1)
	return t.report, t.err
}

type lockerFake struct {
	mu       sync.Mutex
	held     bool
	released int
	err      error
}

func (l *lockerFake) Lock(context.Context) (sweeper.Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}

	if l.held {
		return nil, sweeper.ErrLockHeld
	}

	l.held = true

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		l.held = false
		l.released++

		return nil
	}, nil
}

func Test_RunOnce_WithoutLocker_SweepsDirectly(t *testing.T) {
	target := &targetSpy{report: engine.SweepReport{Found: 2, Expired: 2}}
	s, err := sweeper.New(target)
	require.NoError(t, err)

	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Expired)
	assert.EqualValues(t, 1, target.calls.Load())
}

func Test_RunOnce_ReleasesTheLockAfterSweeping(t *testing.T) {
	target := &targetSpy{}
	locker := &lockerFake{}
	s, err := sweeper.New(target, sweeper.WithLocker(locker))
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.False(t, locker.held)
	assert.Equal(t, 1, locker.released)
}

func Test_RunOnce_SkipsWhenTheLockIsHeldElsewhere(t *testing.T) {
	target := &targetSpy{}
	locker := &lockerFake{held: true}
	s, err := sweeper.New(target, sweeper.WithLocker(locker))
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())

	assert.ErrorIs(t, err, sweeper.ErrLockHeld)
	assert.Zero(t, target.calls.Load())
}

func Test_RunOnce_ReturnsLockBackendErrors(t *testing.T) {
	boom := errors.New("connection refused")
	target := &targetSpy{}
	s, err := sweeper.New(target, sweeper.WithLocker(&lockerFake{err: errors.Join(sweeper.ErrObtainingLockFailed, boom)}))
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())

	assert.ErrorIs(t, err, sweeper.ErrObtainingLockFailed)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, target.calls.Load())
}

func Test_RunOnce_PassesSweepFailuresThrough(t *testing.T) {
	boom := errors.New("store unavailable")
	locker := &lockerFake{}
	s, err := sweeper.New(&targetSpy{err: boom}, sweeper.WithLocker(locker))
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, locker.released)
}

func Test_New_Validation(t *testing.T) {
	_, err := sweeper.New(nil)
	assert.ErrorIs(t, err, sweeper.ErrNilTarget)

	_, err = sweeper.New(&targetSpy{}, sweeper.WithSchedule("every five minutes"))
	assert.ErrorIs(t, err, sweeper.ErrInvalidSchedule)

	_, err = sweeper.New(&targetSpy{}, sweeper.WithSchedule("*/1 * * * * *"))
	assert.ErrorIs(t, err, sweeper.ErrInvalidSchedule, "seconds field is not accepted")
}

func Test_StartStop(t *testing.T) {
	s, err := sweeper.New(&targetSpy{}, sweeper.WithSchedule("0 3 * * *"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), sweeper.ErrAlreadyStarted)

	next, ok := s.Next()
	assert.True(t, ok)
	assert.Equal(t, 3, next.Hour())

	s.Stop()
	_, ok = s.Next()
	assert.False(t, ok)
}

func Test_StopsWhenTheContextEnds(t *testing.T) {
	s, err := sweeper.New(&targetSpy{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()

	assert.Eventually(t, func() bool {
		_, ok := s.Next()
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func Test_RunOnce_ExpiresLapsedHoldsOfTheEngine(t *testing.T) {
	// arrange
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}

	e, err := engine.New(memengine.NewEventStore(), engine.WithClock(clock))
	require.NoError(t, err)
	defer func() { _ = e.Close(context.Background()) }()

	ctx := context.Background()
	bookID, patronID := uuid.New(), uuid.New()
	_, err = e.AcquireCopies(ctx, bookID, "The Dispossessed", "9780061054884", 1)
	require.NoError(t, err)
	_, err = e.Reserve(ctx, patronID, bookID, now.Add(24*time.Hour))
	require.NoError(t, err)

	clockMu.Lock()
	now = now.Add(48 * time.Hour)
	clockMu.Unlock()

	s, err := sweeper.New(e, sweeper.WithLocker(&lockerFake{}))
	require.NoError(t, err)

	// act
	report, err := s.RunOnce(ctx)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.Found)
	assert.Equal(t, 1, report.Expired)

	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, title.AvailableCopies)
}
