package cancelhold_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/cancelhold"
)

func Test_Decide_Success_WhenHoldIsActive(t *testing.T) {
	// arrange
	bookID, patronID := uuid.New(), uuid.New()
	now := time.Now()
	history := givenTitleWithHold(t, bookID, patronID, now.Add(time.Hour), now.Add(-time.Hour))

	// act
	result := cancelhold.Decide(history, cancelhold.BuildCommand(bookID, patronID, now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)
	assert.IsType(t, core.HoldCanceled{}, result.Events[0])
}

func Test_Decide_Success_RecordsLapsedHoldAsExpired(t *testing.T) {
	// arrange
	bookID, patronID := uuid.New(), uuid.New()
	now := time.Now()
	history := givenTitleWithHold(t, bookID, patronID, now.Add(-time.Hour), now.Add(-8*24*time.Hour))

	// act
	result := cancelhold.Decide(history, cancelhold.BuildCommand(bookID, patronID, now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)
	assert.IsType(t, core.HoldExpired{}, result.Events[0])
}

func Test_Decide_Error_WhenCancelingTwice(t *testing.T) {
	// arrange
	bookID, patronID := uuid.New(), uuid.New()
	now := time.Now()
	history := append(
		givenTitleWithHold(t, bookID, patronID, now.Add(time.Hour), now.Add(-time.Hour)),
		core.BuildHoldCanceled(bookID, patronID, now.Add(-time.Minute)),
	)

	// act
	result := cancelhold.Decide(history, cancelhold.BuildCommand(bookID, patronID, now))

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrHoldNotActive)
	assert.False(t, result.HasEventsToAppend())
}

func Test_Decide_Error_WhenHoldWasFulfilled(t *testing.T) {
	// arrange
	bookID, patronID := uuid.New(), uuid.New()
	now := time.Now()
	history := append(
		givenTitleWithHold(t, bookID, patronID, now.Add(time.Hour), now.Add(-time.Hour)),
		core.BuildBookCheckedOut(uuid.New(), bookID, patronID, 1, now.Add(14*24*time.Hour), true, now.Add(-time.Minute)),
	)

	// act
	result := cancelhold.Decide(history, cancelhold.BuildCommand(bookID, patronID, now))

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrHoldNotActive)
}

func Test_Decide_Error_WhenNoHold(t *testing.T) {
	// arrange
	bookID, patronID := uuid.New(), uuid.New()
	now := time.Now()
	history := core.DomainEvents{core.BuildCopiesAcquired(bookID, "Kindred", "", 1, now.Add(-time.Hour))}

	// act
	result := cancelhold.Decide(history, cancelhold.BuildCommand(bookID, patronID, now))

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrHoldNotFound)
	assert.ErrorIs(t, result.HasError(), core.ErrNotFound)
}

func givenTitleWithHold(t *testing.T, bookID, patronID uuid.UUID, pickupBy, at time.Time) core.DomainEvents {
	t.Helper()

	return core.DomainEvents{
		core.BuildCopiesAcquired(bookID, "Kindred", "9780807083697", 1, at.Add(-time.Hour)),
		core.BuildHoldPlaced(bookID, patronID, pickupBy, at),
	}
}
