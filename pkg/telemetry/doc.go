// Package telemetry provides render.Observer implementations that export
// drain activity.
//
// # Prometheus Metrics
//
// Metrics records one sample per drain of the invalidation queue:
//   - canopy_drains_total: drains by mode (sync or frame)
//   - canopy_drain_duration_seconds: drain duration histogram
//   - canopy_renders_total: component render calls
//   - canopy_instructions_total: applied instructions by op
//   - canopy_instances: live component instances after the last drain
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	r := render.New(doc, root, render.WithObserver(m))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Tracing
//
// Tracer opens a span when a drain starts and closes it when the drain
// finishes, with the drain counters as span attributes. The tracer comes from
// the global provider unless WithTracerProvider is given:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
//	r := render.New(doc, root, render.WithObserver(telemetry.Observers(
//	    telemetry.NewMetrics(),
//	    telemetry.NewTracer(telemetry.WithTracerName("my-app")),
//	)))
package telemetry
