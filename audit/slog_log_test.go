package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/audit"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
)

func Test_SlogLog_WritesOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	log := audit.NewSlogLog(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := log.Record(context.Background(), engine.AuditRecord{
		Operation:    engine.OperationReturn,
		ActorID:      "desk-1",
		BookID:       "book-1",
		PatronID:     "patron-1",
		LoanID:       "loan-1",
		CopiesBefore: 1,
		CopiesAfter:  2,
		OccurredAt:   time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "circulation audit", line["msg"])
	assert.Equal(t, "Return", line["operation"])
	assert.Equal(t, "loan-1", line["loan_id"])
	assert.EqualValues(t, 2, line["copies_after"])
}

func Test_NewSlogLog_FallsBackToDefaultLogger(t *testing.T) {
	log := audit.NewSlogLog(nil)

	assert.NoError(t, log.Record(context.Background(), engine.AuditRecord{Operation: engine.OperationRenew}))
}
