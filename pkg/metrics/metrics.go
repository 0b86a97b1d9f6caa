// Package metrics exposes Prometheus metrics for lock operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	lockAcquires = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chadgi_lock_acquires_total",
		Help: "Lock acquire attempts by outcome.",
	}, []string{"outcome"})

	lockReleases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chadgi_lock_releases_total",
		Help: "Lock releases by mode.",
	}, []string{"mode"})

	staleReclaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chadgi_lock_stale_reclaimed_total",
		Help: "Stale locks removed by cleanup.",
	})

	lockCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chadgi_locks",
		Help: "Current lock records by state.",
	}, []string{"state"})
)

// Acquire outcomes.
const (
	OutcomeAcquired  = "acquired"
	OutcomeContended = "contended"
)

// Release modes.
const (
	ModeNormal = "normal"
	ModeForce  = "force"
)

// RecordAcquire records one acquire attempt.
func RecordAcquire(outcome string) {
	lockAcquires.WithLabelValues(outcome).Inc()
}

// RecordRelease records one release.
func RecordRelease(mode string) {
	lockReleases.WithLabelValues(mode).Inc()
}

// RecordStaleReclaimed records locks removed by a cleanup pass.
func RecordStaleReclaimed(n int) {
	staleReclaimed.Add(float64(n))
}

// SetLockCounts updates the per-state lock gauges after a scan.
func SetLockCounts(active, stale int) {
	lockCount.WithLabelValues("active").Set(float64(active))
	lockCount.WithLabelValues("stale").Set(float64(stale))
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
