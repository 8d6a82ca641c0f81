package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Operation metrics
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silo_operations_total",
			Help: "Total number of store operations by kind and outcome",
		},
		[]string{"operation", "status"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "silo_operation_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Record metrics
	RecordsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "silo_records_total",
			Help: "Total number of records currently stored, by class",
		},
		[]string{"class"},
	)

	ChecksumFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "silo_checksum_failures_total",
			Help: "Total number of records that failed checksum verification on load",
		},
	)

	ExpiredReadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "silo_expired_reads_total",
			Help: "Total number of loads that returned nil because the record had expired",
		},
	)

	ClassAliasesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "silo_class_aliases_created_total",
			Help: "Total number of times a persisted class name had no registered factory and fell back to a dynamic object",
		},
	)

	// Cache metrics
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silo_cache_hits_total",
			Help: "Total number of cache lookups that found an entry",
		},
		[]string{"cache"},
	)

	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silo_cache_misses_total",
			Help: "Total number of cache lookups that found nothing",
		},
		[]string{"cache"},
	)

	CacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "silo_cache_entries",
			Help: "Current number of entries held in a cache",
		},
		[]string{"cache"},
	)

	// Lock metrics
	LockWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "silo_lock_wait_duration_seconds",
			Help:    "Time spent waiting to acquire a per-record lock",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	LockTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "silo_lock_timeouts_total",
			Help: "Total number of lock acquisitions that timed out",
		},
	)

	// Safe-mode metrics
	SafeModeActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "silo_safe_mode_active",
			Help: "Whether the store is currently in safe-mode (1) or not (0)",
		},
	)

	SafeModeEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "silo_safe_mode_entries_total",
			Help: "Total number of times the store has entered safe-mode",
		},
	)

	// Maintenance metrics
	MaintenanceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "silo_maintenance_duration_seconds",
			Help:    "Time taken by a maintenance pass (rebuild-stubs, rebuild-shards)",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"task"},
	)

	MaintenanceRecordsTouched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silo_maintenance_records_touched_total",
			Help: "Total number of records rebuilt or relocated by a maintenance pass",
		},
		[]string{"task"},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(RecordsTotal)
	prometheus.MustRegister(ChecksumFailuresTotal)
	prometheus.MustRegister(ExpiredReadsTotal)
	prometheus.MustRegister(ClassAliasesCreatedTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CacheEntries)
	prometheus.MustRegister(LockWaitDuration)
	prometheus.MustRegister(LockTimeoutsTotal)
	prometheus.MustRegister(SafeModeActive)
	prometheus.MustRegister(SafeModeEntriesTotal)
	prometheus.MustRegister(MaintenanceDuration)
	prometheus.MustRegister(MaintenanceRecordsTouched)
}

// Handler returns the Prometheus HTTP handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a small helper for timing an operation and observing its
// duration against a histogram once it completes.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a histogram vec under
// the given label values.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
