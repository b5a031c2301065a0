package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tableLookupMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celest_table_lookup_misses_total",
			Help: "Lookups outside leap-second or EOP table coverage that fell back to the nearest entry.",
		},
		[]string{"table"},
	)

	tableReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celest_table_reloads_total",
			Help: "Table snapshot reload attempts by result.",
		},
		[]string{"result"},
	)

	snapshotVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "celest_table_snapshot_version",
			Help: "Version of the table snapshot currently in use.",
		},
	)

	snapshotAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "celest_table_snapshot_age_seconds",
			Help: "Seconds since the current table snapshot was published.",
		},
	)

	rotationCheckFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celest_rotation_check_failures_total",
			Help: "Composed rotation matrices that failed the orthonormality check.",
		},
		[]string{"transform"},
	)

	batchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "celest_batch_duration_seconds",
			Help:    "Wall time to rotate one batch of state vectors.",
			Buckets: prometheus.DefBuckets,
		},
	)

	batchStates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "celest_batch_states_total",
			Help: "State vectors rotated by the batch worker pool.",
		},
	)
)

func init() {
	prometheus.MustRegister(tableLookupMisses)
	prometheus.MustRegister(tableReloads)
	prometheus.MustRegister(snapshotVersion)
	prometheus.MustRegister(snapshotAgeSeconds)
	prometheus.MustRegister(rotationCheckFailures)
	prometheus.MustRegister(batchDurationSeconds)
	prometheus.MustRegister(batchStates)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// knownTables bounds the table label. Anything else is reported as "other".
var knownTables = map[string]bool{
	"leap_seconds": true,
	"eop":          true,
}

func tableLabel(table string) string {
	if knownTables[table] {
		return table
	}
	return "other"
}

// RecordLookupMiss counts one lookup outside a table's coverage.
func RecordLookupMiss(table string) {
	tableLookupMisses.WithLabelValues(tableLabel(table)).Inc()
}

// RecordReload counts a reload attempt and, on success, publishes the new version.
func RecordReload(version uint64, err error) {
	if err != nil {
		tableReloads.WithLabelValues("error").Inc()
		return
	}
	tableReloads.WithLabelValues("ok").Inc()
	snapshotVersion.Set(float64(version))
}

// SetSnapshotAge sets the age gauge of the current table snapshot.
func SetSnapshotAge(seconds float64) {
	snapshotAgeSeconds.Set(seconds)
}

// RecordRotationCheckFailure counts a matrix that failed the orthonormality check.
func RecordRotationCheckFailure(transform string) {
	rotationCheckFailures.WithLabelValues(transform).Inc()
}

// ObserveBatch records one completed batch.
func ObserveBatch(n int, elapsed time.Duration) {
	batchStates.Add(float64(n))
	batchDurationSeconds.Observe(elapsed.Seconds())
}
