// Package metrics provides Prometheus metrics for zonesync.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the prefix for all zonesync metric names.
const Namespace = "zonesync"

var (
	// BuildInfo exposes the build version as a constant gauge.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information for the running zonesync binary.",
	}, []string{"version", "go_version"})

	// SyncsTotal counts reconciliation runs by result ("success", "error").
	SyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "syncs_total",
		Help:      "Total number of reconciliation runs by result.",
	}, []string{"result"})

	// SyncDuration observes end-to-end reconciliation duration.
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of reconciliation runs in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	// APIErrorsTotal counts panel API failures by stage
	// ("auth", "lookup", "write").
	APIErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_errors_total",
		Help:      "Total number of panel API failures by reconciliation stage.",
	}, []string{"stage"})

	// RecordWritesTotal counts confirmed record writes by action
	// ("create", "update").
	RecordWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "record_writes_total",
		Help:      "Total number of confirmed record writes by action.",
	}, []string{"action"})
)

// SetBuildInfo records the build version labels with a value of 1.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}
