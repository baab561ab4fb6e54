package audit

import (
	"context"
	"log/slog"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
)

const logMsgAuditRecord = "circulation audit"

// SlogLog is an engine.AuditLog that writes each record as one structured log line at info level.
type SlogLog struct {
	logger *slog.Logger
}

// NewSlogLog creates a SlogLog. A nil logger means slog.Default.
func NewSlogLog(logger *slog.Logger) *SlogLog {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogLog{logger: logger}
}

// Record logs the record. It never fails.
func (l *SlogLog) Record(ctx context.Context, record engine.AuditRecord) error {
	l.logger.LogAttrs(ctx, slog.LevelInfo, logMsgAuditRecord,
		slog.String(colOperation, string(record.Operation)),
		slog.String(colActorID, record.ActorID),
		slog.String(colBookID, record.BookID),
		slog.String(colPatronID, record.PatronID),
		slog.String(colLoanID, record.LoanID),
		slog.Int(colCopiesBefore, record.CopiesBefore),
		slog.Int(colCopiesAfter, record.CopiesAfter),
		slog.Time(colOccurredAt, record.OccurredAt),
	)

	return nil
}
