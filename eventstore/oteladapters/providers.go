package oteladapters

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrCreatingResourceFailed is returned when the service resource cannot be built.
var ErrCreatingResourceFailed = errors.New("creating the otel resource failed")

// Providers holds the SDK providers of one process.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Resource       *resource.Resource
}

// ProvidersConfig selects where telemetry goes. Without span processors spans are still created,
// so log records keep their trace ids, but nothing is exported. Without readers metrics are dropped.
type ProvidersConfig struct {
	ServiceName    string
	ServiceVersion string
	SpanProcessors []sdktrace.SpanProcessor
	MetricReaders  []sdkmetric.Reader
	SetGlobal      bool
}

// NewProviders creates the tracer and meter providers for cfg.
func NewProviders(ctx context.Context, cfg ProvidersConfig) (*Providers, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Join(ErrCreatingResourceFailed, err)
	}

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, processor := range cfg.SpanProcessors {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(processor))
	}

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range cfg.MetricReaders {
		meterOpts = append(meterOpts, sdkmetric.WithReader(reader))
	}

	p := &Providers{
		TracerProvider: sdktrace.NewTracerProvider(traceOpts...),
		MeterProvider:  sdkmetric.NewMeterProvider(meterOpts...),
		Resource:       res,
	}

	if cfg.SetGlobal {
		otel.SetTracerProvider(p.TracerProvider)
		otel.SetMeterProvider(p.MeterProvider)
		otel.SetTextMapPropagator(propagation.TraceContext{})
	}

	return p, nil
}

// Tracer returns a tracer of the instrumentation scope name.
func (p *Providers) Tracer(name string) trace.Tracer {
	return p.TracerProvider.Tracer(name)
}

// Meter returns a meter of the instrumentation scope name.
func (p *Providers) Meter(name string) metric.Meter {
	return p.MeterProvider.Meter(name)
}

// Shutdown flushes and stops both providers and returns both errors, if any.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}
