package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

const (
	attrOutcome = "outcome"

	// Circulation outcomes that are not already eventstore status constants.
	statusRejected            = "rejected"
	statusConcurrencyConflict = "concurrency_conflict"
)

// TracingCollector starts one OpenTelemetry span per store or command operation.
type TracingCollector struct {
	tracer trace.Tracer
}

func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan ends a span started by StartSpan. Foreign SpanContexts are ignored.
func (t *TracingCollector) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(attributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ eventstore.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext wraps an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus records the outcome. A rejected command is a business answer, not a failure, so its
// span stays Ok and only carries the outcome attribute.
func (s *OTelSpanContext) SetStatus(status string) {
	s.span.SetAttributes(attribute.String(attrOutcome, status))

	switch status {
	case eventstore.StatusSuccess, statusRejected:
		s.span.SetStatus(codes.Ok, "")
	case eventstore.StatusError:
		s.span.SetStatus(codes.Error, "operation failed")
	case eventstore.StatusCanceled:
		s.span.SetStatus(codes.Error, "operation canceled")
	case eventstore.StatusTimeout:
		s.span.SetStatus(codes.Error, "operation timed out")
	case eventstore.StatusConflict, statusConcurrencyConflict:
		s.span.SetStatus(codes.Error, "concurrency conflict")
	}
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ eventstore.SpanContext = (*OTelSpanContext)(nil)
