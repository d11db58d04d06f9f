package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Command pipeline metrics
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aaviondb_commands_total",
			Help: "Total number of commands dispatched by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aaviondb_command_duration_seconds",
			Help:    "Command dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	// Cache metrics
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aaviondb_cache_hits_total",
			Help: "Total number of cache lookups that found a live entry",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aaviondb_cache_misses_total",
			Help: "Total number of cache lookups that found no live entry",
		},
	)

	CacheEntriesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aaviondb_cache_entries_total",
			Help: "Total number of entries currently held in the cache store",
		},
	)

	// Security metrics
	SecurityBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aaviondb_security_blocks_total",
			Help: "Total number of requests rejected by the SecurityManager, by reason",
		},
		[]string{"reason"},
	)

	SecurityLockdownActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aaviondb_security_lockdown_active",
			Help: "Whether the service is currently in lockdown (1 = locked down, 0 = normal)",
		},
	)

	// Auth metrics
	AuthDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aaviondb_auth_decisions_total",
			Help: "Total number of REST access decisions by reason",
		},
		[]string{"reason"},
	)

	// Export metrics
	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aaviondb_exports_total",
			Help: "Total number of export bundles built, by scope",
		},
		[]string{"scope"},
	)

	ExportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aaviondb_export_duration_seconds",
			Help:    "Time taken to build an export bundle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Scheduler metrics
	CronRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aaviondb_cron_runs_total",
			Help: "Total number of scheduled task runs, by task and outcome",
		},
		[]string{"task", "outcome"},
	)

	CronRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aaviondb_cron_run_duration_seconds",
			Help:    "Time taken to execute one scheduler tick in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CacheEntriesTotal)
	prometheus.MustRegister(SecurityBlocksTotal)
	prometheus.MustRegister(SecurityLockdownActive)
	prometheus.MustRegister(AuthDecisionsTotal)
	prometheus.MustRegister(ExportsTotal)
	prometheus.MustRegister(ExportDuration)
	prometheus.MustRegister(CronRunsTotal)
	prometheus.MustRegister(CronRunDuration)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
