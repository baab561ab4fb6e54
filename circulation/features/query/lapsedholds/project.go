package lapsedholds

import (
	"slices"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// Project implements the query logic.
//
// Query Logic:
//
//	GIVEN: the hold events and checkouts of all titles
//	WHEN: LapsedHolds query is executed
//	THEN: active holds with PickupBy before query.At, oldest deadline first
//	EXCLUDES: canceled, expired and fulfilled holds
func Project(history core.DomainEvents, query Query, maxSequence eventstore.MaxSequenceNumberUint) LapsedHolds {
	holds := make([]LapsedHold, 0)

	for _, title := range core.ProjectTitles(history) {
		for _, hold := range title.ActiveHolds() {
			if !hold.IsLapsed(query.At) {
				continue
			}

			holds = append(holds, LapsedHold{
				BookID:     hold.BookID,
				PatronID:   hold.PatronID,
				ReservedAt: hold.ReservedAt,
				PickupBy:   hold.PickupBy,
			})
		}
	}

	slices.SortFunc(holds, func(a, b LapsedHold) int {
		return a.PickupBy.Compare(b.PickupBy)
	})

	return LapsedHolds{
		Holds:          holds,
		Count:          len(holds),
		SequenceNumber: maxSequence,
	}
}
