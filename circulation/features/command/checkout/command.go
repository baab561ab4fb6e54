package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

const (
	commandType = "Checkout"
)

// Command represents the intent to lend Quantity copies of a title to a patron.
// LoanID is generated once here, so every retry of the same command opens the same loan.
type Command struct {
	LoanID     uuid.UUID
	BookID     uuid.UUID
	PatronID   uuid.UUID
	Quantity   int
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with a fresh time-ordered LoanID.
func BuildCommand(bookID uuid.UUID, patronID uuid.UUID, quantity int, occurredAt time.Time) Command {
	return Command{
		LoanID:     uuid.Must(uuid.NewV7()),
		BookID:     bookID,
		PatronID:   patronID,
		Quantity:   quantity,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
