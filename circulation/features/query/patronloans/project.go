package patronloans

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// Project implements the query logic. It is a pure function of the patron's loan events.
//
// Query Logic:
//
//	GIVEN: the checkout, renewal and return events of the patron
//	WHEN: PatronLoans query is executed
//	THEN: loans ordered by checkout time with the status label derived at query.At
//	INCLUDES: returned loans only with IncludeReturned
//	DETAILS: LateFeesTotal sums the fees of all returned loans, listed or not
func Project(history core.DomainEvents, query Query, maxSequence eventstore.MaxSequenceNumberUint) PatronLoans {
	patronID := query.PatronID.String()

	result := PatronLoans{
		PatronID:       patronID,
		Loans:          make([]LoanInfo, 0),
		LateFeesTotal:  decimal.Zero,
		SequenceNumber: maxSequence,
	}

	for _, title := range core.ProjectTitles(history) {
		for _, loan := range title.Loans {
			if loan.PatronID != patronID {
				continue
			}

			result.LateFeesTotal = result.LateFeesTotal.Add(loan.LateFee)

			status := loan.Status(query.At)
			if loan.IsActive() {
				result.ActiveCount++
			}
			if status == core.LoanStatusOverdue {
				result.OverdueCount++
			}

			if !loan.IsActive() && !query.IncludeReturned {
				continue
			}

			result.Loans = append(result.Loans, LoanInfo{
				LoanID:       loan.LoanID,
				BookID:       loan.BookID,
				Quantity:     loan.Quantity,
				BorrowedAt:   loan.BorrowedAt,
				DueDate:      loan.DueDate,
				ReturnedAt:   loan.ReturnedAt,
				RenewalCount: loan.RenewalCount,
				Status:       status,
				LateFee:      loan.LateFee,
			})
		}
	}

	slices.SortFunc(result.Loans, func(a, b LoanInfo) int {
		if c := a.BorrowedAt.Compare(b.BorrowedAt); c != 0 {
			return c
		}

		if a.LoanID < b.LoanID {
			return -1
		}

		return 1
	})

	return result
}
