package postgresengine_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/postgresengine"
)

const dsnEnv = "OPENSHELF_TEST_POSTGRES_DSN"

func Test_Integration_Append_When_NoEvent_MatchesTheQuery_BeforeAppend(t *testing.T) {
	// setup
	ctx, es := setupIntegrationStore(t)
	bookID := uuid.NewString()
	filter := filterForBook(bookID)

	// arrange
	_, maxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)

	// act
	err = es.Append(ctx, filter, maxSeq, storable(t, "CopiesAcquired", bookID))

	// assert
	assert.NoError(t, err)
	events, newMaxSeq, err := es.Query(ctx, filter)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, newMaxSeq, events[0].SequenceNumber)
}

func Test_Integration_Append_When_AnotherWriter_AppendedInBetween(t *testing.T) {
	// setup
	ctx, es := setupIntegrationStore(t)
	bookID := uuid.NewString()
	filter := filterForBook(bookID)

	// arrange
	_, staleMaxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, filter, staleMaxSeq, storable(t, "CopiesAcquired", bookID)))

	// act
	err = es.Append(ctx, filter, staleMaxSeq, storable(t, "HoldPlaced", bookID))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func Test_Integration_Append_OtherTitles_DoNotConflict(t *testing.T) {
	// setup
	ctx, es := setupIntegrationStore(t)
	bookA, bookB := uuid.NewString(), uuid.NewString()

	// arrange
	_, maxSeqA, err := es.Query(ctx, filterForBook(bookA))
	require.NoError(t, err)
	require.NoError(t, es.Append(ctx, filterForBook(bookB), 0, storable(t, "CopiesAcquired", bookB)))

	// act
	err = es.Append(ctx, filterForBook(bookA), maxSeqA, storable(t, "CopiesAcquired", bookA))

	// assert
	assert.NoError(t, err)
}

func Test_Integration_Append_MultipleEvents_AreAllOrNothing(t *testing.T) {
	// setup
	ctx, es := setupIntegrationStore(t)
	bookID := uuid.NewString()
	filter := filterForBook(bookID)

	// act
	err := es.Append(ctx, filter, 0, storable(t, "HoldExpired", bookID), storable(t, "HoldPlaced", bookID))

	// assert
	assert.NoError(t, err)
	events, _, err := es.Query(ctx, filter)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "HoldExpired", events[0].EventType)
	assert.Equal(t, "HoldPlaced", events[1].EventType)
}

func Test_Integration_ConcurrentAppends_OnlyOneWinsPerVersion(t *testing.T) {
	// setup
	ctx, es := setupIntegrationStore(t)
	bookID := uuid.NewString()
	filter := filterForBook(bookID)
	writers := 8

	// arrange
	_, maxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)
	event := storable(t, "HoldPlaced", bookID)

	// act
	var wg sync.WaitGroup
	var succeeded, conflicted atomic.Int32

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			appendErr := es.Append(ctx, filter, maxSeq, event)
			switch {
			case appendErr == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, appendErr, eventstore.ErrConcurrencyConflict):
				conflicted.Add(1)
			}
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(writers-1), conflicted.Load())
}

func Test_Integration_EventualConsistency_QueryStillWorksWithoutReplica(t *testing.T) {
	// setup
	ctx, es := setupIntegrationStore(t)
	bookID := uuid.NewString()
	filter := filterForBook(bookID)
	require.NoError(t, es.Append(ctx, filter, 0, storable(t, "CopiesAcquired", bookID)))

	// act
	events, _, err := es.Query(eventstore.WithEventualConsistency(ctx), filter)

	// assert
	assert.NoError(t, err)
	assert.Len(t, events, 1)
}

func setupIntegrationStore(t *testing.T) (context.Context, *postgresengine.EventStore) {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	table := fmt.Sprintf("events_test_%d", time.Now().UnixNano())
	es, err := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithTableName(table))
	require.NoError(t, err)
	require.NoError(t, es.CreateSchema(ctx))

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)
	})

	return ctx, es
}

func filterForBook(bookID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("CopiesAcquired", "HoldPlaced", "HoldExpired").
		AndAnyPredicateOf(eventstore.P("BookID", bookID)).
		Finalize()
}

func storable(t *testing.T, eventType string, bookID string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(
		eventType,
		time.Now().UTC(),
		[]byte(fmt.Sprintf(`{"BookID":%q}`, bookID)),
	)
	require.NoError(t, err)

	return event
}
