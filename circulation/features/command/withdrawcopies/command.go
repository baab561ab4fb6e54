package withdrawcopies

import (
	"time"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

const (
	commandType = "WithdrawCopies"
)

// Command represents the intent to remove Quantity copies from the pool for good.
type Command struct {
	BookID     uuid.UUID
	Quantity   int
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, quantity int, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		Quantity:   quantity,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
