package reservecopy

import (
	"time"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

const (
	commandType = "Reserve"
)

// Command represents the intent to place a hold. A zero PickupBy means the policy default.
type Command struct {
	BookID     uuid.UUID
	PatronID   uuid.UUID
	PickupBy   time.Time
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, patronID uuid.UUID, pickupBy time.Time, occurredAt time.Time) Command {
	if !pickupBy.IsZero() {
		pickupBy = core.ToOccurredAt(pickupBy)
	}

	return Command{
		BookID:     bookID,
		PatronID:   patronID,
		PickupBy:   pickupBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
