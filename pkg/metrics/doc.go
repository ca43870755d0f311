// Package metrics provides Prometheus instrumentation for asyncwire components.
//
// # Quick Start
//
// Enable metrics with the metrics-enabled writer constructor:
//
//	w, err := writer.NewWithMetrics(conn, 4096, "uplink")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	cfg := writer.DefaultConfig()
//	cfg.Metrics = metrics.NewRegistry(registry)
//	cfg.Name = "uplink"
//
// # Available Metrics
//
// ## Writer Metrics
//
//   - asyncwire_writer_bytes_accepted_total: Bytes accepted by Write
//   - asyncwire_writer_bytes_drained_total: Bytes handed to the transport
//   - asyncwire_writer_drains_total: Drains that moved at least one byte
//   - asyncwire_writer_backpressure_waits_total: Times Write blocked on a full buffer
//   - asyncwire_writer_backpressure_wait_seconds: Time spent blocked
//   - asyncwire_writer_buffer_usage_bytes: Bytes currently queued
//   - asyncwire_writer_buffer_capacity_bytes: Capacity of the current binding
//   - asyncwire_writer_disconnects_total: Teardowns of a live binding
//
// ## Transport Metrics
//
//   - asyncwire_transport_events_total: Events delivered, by kind and event
//   - asyncwire_transport_bytes_sent_total: Bytes put on the wire, by kind
//
// # Labels
//
//   - writer_name: User-provided name for the writer instance
//   - kind: Transport implementation ("mem", "tcp", "redis")
//   - event: "poll", "ack", "data" or "disconnect"
//
// # Runtime Control
//
// The writer implements Instrumentable:
//
//	w.DisableMetrics()
//	w.EnableMetrics(metrics.Config{Enabled: true, Registry: registry})
//	enabled := w.MetricsEnabled()
package metrics
