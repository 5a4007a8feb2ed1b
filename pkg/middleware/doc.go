// Package middleware adds observability around differ checks.
//
// # Prometheus Metrics
//
// Prometheus returns a differ.Observer that counts checks and changes and
// records check durations and collection lengths:
//
//	m := middleware.Prometheus(middleware.WithNamespace("myapp"))
//	d := differ.New(differ.WithObserver(m))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
//
// Metrics collected:
//   - iterdiff_checks_total: Counter of checks by dirty ("true"/"false")
//   - iterdiff_changes_total: Counter of changes by kind (added, moved, removed, identity)
//   - iterdiff_check_duration_seconds: Histogram of check duration
//   - iterdiff_collection_length: Histogram of collection length
//
// # OpenTelemetry Tracing
//
// Traced wraps any differ.Differ so that each check runs inside a span:
//
//	td := middleware.Traced(differ.New(), middleware.WithTracerName("my-app"))
//	changes, err := td.Check(ctx, items)
//
// The tracer comes from the global OpenTelemetry tracer provider unless
// WithTracerProvider is given.
//
// # Logging
//
// Logging returns an observer that writes one slog Debug record per check.
// Multi fans a check out to several observers.
package middleware
