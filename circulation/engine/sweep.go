package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/features/query/lapsedholds"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

// SweeperActorID is recorded as actor of the holds the sweep expires when ctx carries none.
const SweeperActorID = "system:hold-sweeper"

const (
	logMsgSweepCompleted = "hold sweep completed"

	logAttrFound   = "found"
	logAttrExpired = "expired"
	logAttrSkipped = "skipped"
	logAttrFailed  = "failed"
)

// SweepReport summarizes one SweepExpiredHolds run.
type SweepReport struct {
	Found   int
	Expired int

	// Skipped counts holds that were picked up, canceled or expired concurrently.
	Skipped int
	Failed  int
}

// SweepExpiredHolds expires every lapsed hold, one title transaction each. A failing title does
// not stop the sweep; the joined failures are returned with the report. Cancelling ctx stops it.
func (e *Engine) SweepExpiredHolds(ctx context.Context) (SweepReport, error) {
	if shell.ActorFrom(ctx) == "" {
		ctx = shell.ContextWithActor(ctx, SweeperActorID)
	}

	lapsed, err := e.LapsedHolds(ctx)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Found: lapsed.Count}

	var failures []error

	for _, hold := range lapsed.Holds {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}

		bookID, patronID, err := parseHold(hold)
		if err == nil {
			_, err = e.ExpireHold(ctx, patronID, bookID)
		}

		switch {
		case err == nil:
			report.Expired++
		case shell.IsRejection(err):
			report.Skipped++
		default:
			report.Failed++
			failures = append(failures, err)
		}
	}

	shell.LogInfo(ctx, e.logger, e.contextualLogger, logMsgSweepCompleted,
		logAttrFound, report.Found,
		logAttrExpired, report.Expired,
		logAttrSkipped, report.Skipped,
		logAttrFailed, report.Failed,
	)

	return report, errors.Join(failures...)
}

func parseHold(hold lapsedholds.LapsedHold) (uuid.UUID, uuid.UUID, error) {
	bookID, err := uuid.Parse(hold.BookID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	patronID, err := uuid.Parse(hold.PatronID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return bookID, patronID, nil
}
