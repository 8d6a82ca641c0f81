/*
Package metrics provides Prometheus metrics collection and exposition for
the persistence engine.

Metrics are registered at package init via prometheus.MustRegister and
exposed for scraping through Handler(), an http.Handler wrapping
promhttp.Handler(). Health and readiness are reported separately through
the HealthChecker in health.go, whose JSON responses are better suited to
orchestrator liveness/readiness probes than a Prometheus gauge.

# Metrics Catalog

Operation metrics:

silo_operations_total{operation, status}:
  - Type: Counter
  - Total store/load/delete calls, partitioned by outcome. The store's
    WireMetrics counts only completed calls, under status "ok".

silo_operation_duration_seconds{operation}:
  - Type: Histogram
  - Wall-clock time of one store/load/delete call.

Record metrics:

silo_records_total{class}:
  - Type: Gauge
  - Current record count per class. Nothing in this module sets it;
    the store's WireMetrics does not feed it.

silo_checksum_failures_total:
  - Type: Counter
  - Loads that failed CRC32 verification and tripped safe-mode.

silo_expired_reads_total:
  - Type: Counter
  - Loads that found a record past its TTL and returned nil.

silo_class_aliases_created_total:
  - Type: Counter
  - Loads whose persisted class name had no registered factory and
    fell back to a DynamicObject.

Cache metrics:

silo_cache_hits_total{cache} / silo_cache_misses_total{cache}:
  - Type: Counter
  - cache is "object" or "metadata".

silo_cache_entries{cache}:
  - Type: Gauge
  - Current entry count per cache.

Lock metrics:

silo_lock_wait_duration_seconds{mode}:
  - Type: Histogram
  - Time spent waiting to acquire a per-record lock; mode is
    "exclusive" or "shared".

silo_lock_timeouts_total:
  - Type: Counter

Safe-mode metrics:

silo_safe_mode_active:
  - Type: Gauge (0/1)

silo_safe_mode_entries_total:
  - Type: Counter

Maintenance metrics:

silo_maintenance_duration_seconds{task} / silo_maintenance_records_touched_total{task}:
  - Type: Histogram / Counter
  - task is "rebuild-stubs" or "rebuild-shards".

# Usage

	import "github.com/cuemby/silo/pkg/metrics"

	timer := metrics.NewTimer()
	id, err := st.Store(obj, "", 0)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.OperationsTotal.WithLabelValues("store", status).Inc()
	timer.ObserveDurationVec(metrics.OperationDuration, "store")

	http.Handle("/metrics", metrics.Handler())
	http.HandleFunc("/health", metrics.HealthHandler())
	http.HandleFunc("/ready", metrics.ReadyHandler())
*/
package metrics
