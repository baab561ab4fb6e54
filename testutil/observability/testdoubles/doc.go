// Package testdoubles provides spies for the observability interfaces of the event store and the
// circulation command layer:
//   - MetricsCollectorSpy records durations, counters and values
//   - TracingCollectorSpy records spans with their start and end attributes
//   - ContextualLoggerSpy records context-aware log calls per level
//
// Tests assert on what an instrumented component reported without a telemetry backend.
package testdoubles
