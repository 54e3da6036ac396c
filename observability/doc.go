// Package observability provides OpenTelemetry tracing and metrics for
// endpoint operations.
//
// Setup:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "restdemo", version.Version, "development")
//	defer shutdown(ctx)
//
// Both signals are disabled by default; the global no-op providers are then
// left in place and every span or instrument call is free.
//
// Per-operation tracking:
//
//	metrics, err := observability.NewMetrics(observability.Meter("restdemo"))
//	oc := observability.NewOperationContext("restdemo", "read", requestID, metrics)
//	ctx, span := oc.StartSpanForOperation(ctx, "resource.read")
//	...
//	oc.EndOperation(ctx, span, err)
package observability
