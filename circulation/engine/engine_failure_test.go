package engine_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/memengine"
)

func Test_Engine_Reserve_ConflictOnEveryAttempt_SurfacesTransactionConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newConflictingStore()
	e := givenEngineOn(t, store, engine.WithRetryOptions(shell.WithMaxAttempts(3), shell.WithBaseDelay(time.Millisecond)))
	bookID := uuid.New()
	givenCopies(t, e, bookID, 2)
	eventsBefore := store.Len()
	store.conflictOnNextAppends(1000)

	// act
	_, err := e.Reserve(ctx, uuid.New(), bookID, time.Time{})

	// assert
	assert.ErrorIs(t, err, core.ErrTransactionConflict)
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, int32(3), store.rejectedAppends.Load())
	assert.Equal(t, eventsBefore, store.Len())

	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, title.AvailableCopies)
	assert.Empty(t, title.Holds)
	assertInvariant(t, e, bookID)
}

func Test_Engine_Checkout_ConflictThenSuccess_DecrementsOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newConflictingStore()
	e := givenEngineOn(t, store, engine.WithRetryOptions(shell.WithMaxAttempts(3), shell.WithBaseDelay(time.Millisecond)))
	bookID := uuid.New()
	givenCopies(t, e, bookID, 2)
	store.conflictOnNextAppends(2)

	// act
	receipt, err := e.Checkout(ctx, uuid.New(), bookID, 1)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.CopiesAfter)
	assert.Equal(t, int32(2), store.rejectedAppends.Load())

	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, title.AvailableCopies)
	assert.Len(t, title.Loans, 1)
	assertInvariant(t, e, bookID)
}

func Test_Engine_CanceledOrTimedOutCommands_LeaveTheTitleUntouched(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	tests := []struct {
		name        string
		ctx         context.Context
		expectedErr error
		call        func(ctx context.Context, e *engine.Engine, bookID uuid.UUID) error
	}{
		{
			name:        "checkout with canceled context",
			ctx:         canceled,
			expectedErr: context.Canceled,
			call: func(ctx context.Context, e *engine.Engine, bookID uuid.UUID) error {
				_, err := e.Checkout(ctx, uuid.New(), bookID, 1)
				return err
			},
		},
		{
			name:        "reserve past its deadline",
			ctx:         expired,
			expectedErr: context.DeadlineExceeded,
			call: func(ctx context.Context, e *engine.Engine, bookID uuid.UUID) error {
				_, err := e.Reserve(ctx, uuid.New(), bookID, time.Time{})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			store := newConflictingStore()
			e := givenEngineOn(t, store)
			bookID := uuid.New()
			givenCopies(t, e, bookID, 1)
			eventsBefore := store.Len()

			// act
			err := tt.call(tt.ctx, e, bookID)

			// assert
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.NotErrorIs(t, err, core.ErrTransactionConflict)
			assert.Equal(t, eventsBefore, store.Len())

			title, err := e.Title(context.Background(), bookID)
			require.NoError(t, err)
			assert.Equal(t, 1, title.AvailableCopies)
			assert.Empty(t, title.Holds)
			assert.Empty(t, title.Loans)
		})
	}
}

// conflictingStore rejects a configurable number of appends as if another writer had won.
type conflictingStore struct {
	*memengine.EventStore
	conflictsLeft   atomic.Int32
	rejectedAppends atomic.Int32
}

func newConflictingStore() *conflictingStore {
	return &conflictingStore{EventStore: memengine.NewEventStore()}
}

func (s *conflictingStore) conflictOnNextAppends(n int32) {
	s.conflictsLeft.Store(n)
}

func (s *conflictingStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if s.conflictsLeft.Add(-1) >= 0 {
		s.rejectedAppends.Add(1)
		return eventstore.ErrConcurrencyConflict
	}

	return s.EventStore.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
}

func givenEngineOn(t *testing.T, store shell.EventStore, opts ...engine.Option) *engine.Engine {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]engine.Option{engine.WithClock(clock.Now), engine.WithDispatch(64, 1)}, opts...)

	e, err := engine.New(store, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = e.Close(context.Background())
	})

	return e
}
