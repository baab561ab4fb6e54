package expirehold

import (
	"time"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

const (
	commandType = "ExpireHold"
)

// Command represents the intent to expire the hold of PatronID on BookID.
type Command struct {
	BookID     uuid.UUID
	PatronID   uuid.UUID
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, patronID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		PatronID:   patronID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
