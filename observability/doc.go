// Package observability wires OpenTelemetry tracing and metrics for authgate.
//
// When disabled the global providers stay as the otel no-op defaults, so code
// that creates instruments or spans works the same either way:
//
//	tel := observability.NewComponent(cfg.Observability, log)
//	registry.Register(tel)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanLogin)
//	defer span.End()
//
// HTTP request metrics are recorded through Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordRequestEnd(ctx, "POST", "/api/auth/login", 200, elapsed)
package observability
