package acquirecopies

import (
	"time"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

const (
	commandType = "AcquireCopies"
)

// Command represents the intent to add Quantity copies. Title and ISBN may be empty on restocks.
type Command struct {
	BookID     uuid.UUID
	Title      string
	ISBN       core.ISBNString
	Quantity   int
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, title string, isbn string, quantity int, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		Title:      title,
		ISBN:       isbn,
		Quantity:   quantity,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
