// Package observable wraps command and query handlers with metrics, tracing and logging while the
// handlers themselves stay pure circulation logic (load title, decide, append).
//
// The wrappers are applied at wiring time, not inside the handler constructors:
//
//	core := checkout.NewCommandHandler(store, policy.Default())
//	handler, err := observable.NewCommandWrapper[checkout.Command](
//		core,
//		observable.WithCommandMetrics[checkout.Command](metricsCollector),
//		observable.WithCommandTracing[checkout.Command](tracingCollector),
//		observable.WithCommandContextualLogging[checkout.Command](contextualLogger),
//	)
//
// Unit tests use the unwrapped handlers.
package observable
