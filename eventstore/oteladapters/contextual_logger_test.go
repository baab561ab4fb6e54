package oteladapters_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore/oteladapters"
)

type logRecorder struct {
	embedded.Logger

	mu      sync.Mutex
	records []log.Record
}

func (r *logRecorder) Emit(_ context.Context, record log.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)
}

func (r *logRecorder) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func (r *logRecorder) attributes(i int) map[string]log.Value {
	r.mu.Lock()
	defer r.mu.Unlock()

	attrs := make(map[string]log.Value)
	r.records[i].WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_OTelLogger_SeverityAndBody(t *testing.T) {
	recorder := &logRecorder{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	logger.DebugContext(ctx, "d")
	logger.InfoContext(ctx, "i")
	logger.WarnContext(ctx, "w")
	logger.ErrorContext(ctx, "e")

	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
	assert.Equal(t, "w", recorder.records[2].Body().AsString())
}

func Test_OTelLogger_KeepsAttributeTypes(t *testing.T) {
	recorder := &logRecorder{}
	logger := oteladapters.NewOTelLogger(recorder)

	logger.WarnContext(context.Background(), "command rejected",
		"command_type", "Checkout",
		"copies_after", 2,
		"lapsed", true,
		"duration", 1500*time.Microsecond,
		"error", errors.New("insufficient copies"),
		42, "non-string key is dropped",
		"dangling",
	)

	attrs := recorder.attributes(0)
	assert.Len(t, attrs, 5)
	assert.Equal(t, "Checkout", attrs["command_type"].AsString())
	assert.Equal(t, int64(2), attrs["copies_after"].AsInt64())
	assert.True(t, attrs["lapsed"].AsBool())
	assert.InDelta(t, 1.5, attrs["duration"].AsFloat64(), 0.0001)
	assert.Equal(t, "insufficient copies", attrs["error"].AsString())
}

func Test_SlogBridgeLoggerWithHandler_WritesToTheHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.InfoContext(context.Background(), "hold sweep completed", "expired", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hold sweep completed", line["msg"])
	assert.EqualValues(t, 3, line["expired"])
}

func Test_SlogBridgeLogger_UsesTheGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("github.com/Agihtaws/OpenShelf-sub001/test")

	assert.NotPanics(t, func() {
		logger.DebugContext(context.Background(), "d")
		logger.InfoContext(context.Background(), "i")
		logger.WarnContext(context.Background(), "w")
		logger.ErrorContext(context.Background(), "e")
	})
}
