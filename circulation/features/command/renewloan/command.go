package renewloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

const (
	commandType = "Renew"
)

// Command represents the intent to renew a loan. A zero RequestedDueDate asks for the latest
// date the renewal window allows.
type Command struct {
	LoanID           uuid.UUID
	RequestedDueDate time.Time
	OccurredAt       core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, requestedDueDate time.Time, occurredAt time.Time) Command {
	if !requestedDueDate.IsZero() {
		requestedDueDate = core.ToOccurredAt(requestedDueDate)
	}

	return Command{
		LoanID:           loanID,
		RequestedDueDate: requestedDueDate,
		OccurredAt:       core.ToOccurredAt(occurredAt),
	}
}
