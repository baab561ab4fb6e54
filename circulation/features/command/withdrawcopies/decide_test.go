package withdrawcopies_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/command/withdrawcopies"
)

func Test_Decide_Success_ShrinksPoolAndTotal(t *testing.T) {
	// arrange
	bookID := uuid.New()
	history := core.DomainEvents{core.BuildCopiesAcquired(bookID, "Solaris", "", 3, time.Now())}

	// act
	result := withdrawcopies.Decide(history, withdrawcopies.BuildCommand(bookID, 2, time.Now()))

	// assert
	require.NoError(t, result.HasError())
	s := core.ProjectTitle(bookID.String(), append(history, result.Events...))
	assert.Equal(t, 1, s.AvailableCopies)
	assert.Equal(t, 1, s.TotalAcquired)
	assert.NoError(t, s.CheckInvariant())
}

func Test_Decide_BusinessErrors(t *testing.T) {
	bookID, patronID := uuid.New(), uuid.New()
	now := time.Now()

	testCases := []struct {
		name        string
		events      core.DomainEvents
		quantity    int
		expectedErr error
	}{
		{
			name:        "zero quantity",
			events:      core.DomainEvents{core.BuildCopiesAcquired(bookID, "Solaris", "", 3, now)},
			quantity:    0,
			expectedErr: core.ErrInvalidQuantity,
		},
		{
			name:        "unknown title",
			events:      core.DomainEvents{},
			quantity:    1,
			expectedErr: core.ErrTitleNotFound,
		},
		{
			name: "held copy cannot be withdrawn",
			events: core.DomainEvents{
				core.BuildCopiesAcquired(bookID, "Solaris", "", 1, now),
				core.BuildHoldPlaced(bookID, patronID, now.Add(time.Hour), now),
			},
			quantity:    1,
			expectedErr: core.ErrInsufficientCopies,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := withdrawcopies.Decide(tc.events, withdrawcopies.BuildCommand(bookID, tc.quantity, now))

			// assert
			assert.ErrorIs(t, result.HasError(), tc.expectedErr)
		})
	}
}
