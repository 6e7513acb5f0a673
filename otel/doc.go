// Package otel: OpenTelemetry metrics for nubdb.
//
// # Overview
//
// This package implements nubdb.MetricsCollector using OpenTelemetry,
// so percentile latencies (p50, p95, p99) and hit ratios can be exported
// to any OTEL-compatible backend. It is a separate module so the nubdb
// core never pulls in the OTEL SDK: applications that don't configure a
// MetricsCollector pay nothing (nubdb.NoOpMetricsCollector is the
// default).
//
// # Quick start
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := nubdbotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	engine, err := nubdb.NewEngine(nubdb.Config{
//		AOFPath:          "nubdb.aof",
//		MetricsCollector: collector,
//	})
//
// # Metrics exposed
//
// Histograms:
//   - nubdb_get_latency_ns
//   - nubdb_set_latency_ns
//   - nubdb_delete_latency_ns
//   - nubdb_compaction_latency_ns
//   - nubdb_compaction_result_bytes
//
// Counters:
//   - nubdb_get_hits_total
//   - nubdb_get_misses_total
//
// # Thread safety
//
// All methods are safe for concurrent use; the underlying OTEL
// instruments are lock-free.
package otel
