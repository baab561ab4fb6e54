package patronloans_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/query/patronloans"
)

var start = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func Test_Project_ListsActiveLoansAcrossTitles(t *testing.T) {
	// arrange
	patronID := uuid.New()
	bookA, bookB := uuid.New(), uuid.New()
	loanA, loanB := uuid.New(), uuid.New()
	history := core.DomainEvents{
		core.BuildBookCheckedOut(loanA, bookA, patronID, 1, start.AddDate(0, 0, 14), false, start),
		core.BuildBookCheckedOut(loanB, bookB, patronID, 2, start.AddDate(0, 0, 15), false, start.Add(time.Hour)),
		core.BuildLoanRenewed(loanA, bookA, patronID, start.AddDate(0, 0, 14), start.AddDate(0, 0, 24), 1, start.AddDate(0, 0, 10)),
	}

	// act
	result := patronloans.Project(history, patronloans.BuildQuery(patronID, start.AddDate(0, 0, 20), false), 3)

	// assert
	require.Len(t, result.Loans, 2)
	assert.Equal(t, loanA.String(), result.Loans[0].LoanID)
	assert.Equal(t, core.LoanStatusRenewed, result.Loans[0].Status)
	assert.Equal(t, core.LoanStatusOverdue, result.Loans[1].Status)
	assert.Equal(t, 2, result.ActiveCount)
	assert.Equal(t, 1, result.OverdueCount)
}

func Test_Project_ReturnedLoansOnlyWhenRequested(t *testing.T) {
	// arrange
	patronID, bookID, loanID := uuid.New(), uuid.New(), uuid.New()
	history := core.DomainEvents{
		core.BuildBookCheckedOut(loanID, bookID, patronID, 1, start.AddDate(0, 0, 14), false, start),
		core.BuildLoanReturned(loanID, bookID, patronID, 1, decimal.RequireFromString("1.50"), start.AddDate(0, 0, 20)),
	}

	// act
	withoutReturned := patronloans.Project(history, patronloans.BuildQuery(patronID, start.AddDate(0, 0, 21), false), 2)
	withReturned := patronloans.Project(history, patronloans.BuildQuery(patronID, start.AddDate(0, 0, 21), true), 2)

	// assert
	assert.Empty(t, withoutReturned.Loans)
	assert.True(t, decimal.RequireFromString("1.50").Equal(withoutReturned.LateFeesTotal))
	require.Len(t, withReturned.Loans, 1)
	assert.Equal(t, core.LoanStatusReturned, withReturned.Loans[0].Status)
	assert.Equal(t, 0, withReturned.ActiveCount)
}

func Test_Project_IgnoresOtherPatrons(t *testing.T) {
	// arrange
	patronID, otherPatronID, bookID := uuid.New(), uuid.New(), uuid.New()
	history := core.DomainEvents{
		core.BuildBookCheckedOut(uuid.New(), bookID, otherPatronID, 1, start.AddDate(0, 0, 14), false, start),
	}

	// act
	result := patronloans.Project(history, patronloans.BuildQuery(patronID, start, true), 1)

	// assert
	assert.Empty(t, result.Loans)
	assert.True(t, result.LateFeesTotal.IsZero())
}
