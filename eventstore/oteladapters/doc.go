// Package oteladapters implements the eventstore and circulation observability interfaces on
// OpenTelemetry: a metrics collector, a tracing collector and two contextual loggers.
//
// NewProviders wires the SDK tracer and meter providers and installs them globally, so the
// collectors created from them and the slog bridge logger share one resource.
package oteladapters
