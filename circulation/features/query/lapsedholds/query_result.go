package lapsedholds

import (
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// LapsedHold is an active hold past its pickup deadline.
type LapsedHold struct {
	BookID     core.BookIDString
	PatronID   core.PatronIDString
	ReservedAt time.Time
	PickupBy   time.Time
}

// LapsedHolds is the query result.
type LapsedHolds struct {
	Holds          []LapsedHold
	Count          int
	SequenceNumber eventstore.MaxSequenceNumberUint
}
