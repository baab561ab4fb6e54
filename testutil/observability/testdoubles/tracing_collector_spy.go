package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

// SpySpanContext records the status and attributes set on a span.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// TracingCollectorSpy captures tracing calls for testing.
type TracingCollectorSpy struct {
	spanRecords []SpySpanRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpySpanRecord represents a recorded span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
	spanContext     *SpySpanContext
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{recordCalls: recordCalls}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if !s.recordCalls {
		return ctx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{attributes: make(map[string]string)}
	s.spanRecords = append(s.spanRecords, SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		spanContext:     spanCtx,
	})

	return ctx, spanCtx
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	if !s.recordCalls || spanCtx == nil {
		return
	}

	spySpan, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spanRecords {
		if s.spanRecords[i].spanContext == spySpan {
			s.spanRecords[i].Status = status
			s.spanRecords[i].EndAttributes = maps.Clone(attrs)
			s.spanRecords[i].Finished = true
		}
	}
}

// Spans returns a copy of the recorded spans.
func (s *TracingCollectorSpy) Spans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.spanRecords...)
}

// FinishedSpan returns the first finished span with the given name.
func (s *TracingCollectorSpy) FinishedSpan(name string) (SpySpanRecord, bool) {
	for _, span := range s.Spans() {
		if span.Name == name && span.Finished {
			return span, true
		}
	}

	return SpySpanRecord{}, false
}

var _ eventstore.TracingCollector = (*TracingCollectorSpy)(nil)
