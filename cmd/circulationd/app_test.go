package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/config"
)

func Test_App_MemoryStorageWithOutboxAndTelemetry(t *testing.T) {
	// arrange
	t.Setenv("OPENSHELF_NOTIFICATIONS_OUTBOX_PATH", filepath.Join(t.TempDir(), "outbox.db"))
	t.Setenv("OPENSHELF_TELEMETRY_ENABLED", "true")
	t.Setenv("OPENSHELF_DISPATCH_WORKERS", "1")

	cfg, err := config.Load("")
	require.NoError(t, err)

	logs := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, a.outbox)
	require.NotNil(t, a.sweeper)
	require.NoError(t, a.start(ctx))

	bookID, patronID := uuid.New(), uuid.New()

	// act
	_, err = a.engine.AcquireCopies(ctx, bookID, "Parable of the Sower", "9781538732182", 2)
	require.NoError(t, err)
	receipt, err := a.engine.Checkout(ctx, patronID, bookID, 1)
	require.NoError(t, err)

	// assert
	assert.Equal(t, 1, receipt.CopiesAfter)

	_, ok := a.sweeper.Next()
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), `"msg":"patron notification"`)
	}, 5*time.Second, 20*time.Millisecond, "the outbox forwards to the log notifier")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	assert.NoError(t, a.shutdown(shutdownCtx))
	assert.Contains(t, logs.String(), `"msg":"circulation audit"`)
}

func Test_App_WithoutCollaborators(t *testing.T) {
	t.Setenv("OPENSHELF_AUDIT_SINK", "none")
	t.Setenv("OPENSHELF_SWEEPER_ENABLED", "false")

	cfg, err := config.Load("")
	require.NoError(t, err)

	a, err := newApp(context.Background(), cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)

	assert.Nil(t, a.sweeper)
	assert.Nil(t, a.outbox)
	assert.NoError(t, a.start(context.Background()))
	assert.NoError(t, a.shutdown(context.Background()))
}

func Test_App_PostgresAuditNeedsPostgresStorage(t *testing.T) {
	t.Setenv("OPENSHELF_AUDIT_SINK", "postgres")

	cfg, err := config.Load("")
	require.NoError(t, err)

	_, err = newApp(context.Background(), cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	assert.ErrorIs(t, err, ErrAuditNeedsPostgres)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
