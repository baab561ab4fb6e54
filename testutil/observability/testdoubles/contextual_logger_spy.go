package testdoubles

import (
	"context"
	"sync"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// ContextualLoggerSpy captures contextual logging calls for testing.
type ContextualLoggerSpy struct {
	records     []SpyContextualLogRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpyContextualLogRecord represents a recorded contextual log call.
type SpyContextualLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy instance.
func NewContextualLoggerSpy(recordCalls bool) *ContextualLoggerSpy {
	return &ContextualLoggerSpy{
		recordCalls: recordCalls,
	}
}

// DebugContext implements the ContextualLogger interface for testing.
func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

// InfoContext implements the ContextualLogger interface for testing.
func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

// WarnContext implements the ContextualLogger interface for testing.
func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

// ErrorContext implements the ContextualLogger interface for testing.
func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level string, msg string, args []any) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyContextualLogRecord{
		Level:   level,
		Message: msg,
		Args:    args,
		Context: ctx,
	})
}

// Records returns a copy of all records of the given level.
func (s *ContextualLoggerSpy) Records(level string) []SpyContextualLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyContextualLogRecord, 0)
	for _, record := range s.records {
		if record.Level == level {
			records = append(records, record)
		}
	}

	return records
}

// HasDebugLog checks if a debug log with the specified message exists.
func (s *ContextualLoggerSpy) HasDebugLog(message string) bool {
	return s.has("debug", message)
}

// HasInfoLog checks if an info log with the specified message exists.
func (s *ContextualLoggerSpy) HasInfoLog(message string) bool {
	return s.has("info", message)
}

// HasWarnLog checks if a warn log with the specified message exists.
func (s *ContextualLoggerSpy) HasWarnLog(message string) bool {
	return s.has("warn", message)
}

// HasErrorLog checks if an error log with the specified message exists.
func (s *ContextualLoggerSpy) HasErrorLog(message string) bool {
	return s.has("error", message)
}

func (s *ContextualLoggerSpy) has(level string, message string) bool {
	for _, record := range s.Records(level) {
		if record.Message == message {
			return true
		}
	}

	return false
}

var _ eventstore.ContextualLogger = (*ContextualLoggerSpy)(nil)
