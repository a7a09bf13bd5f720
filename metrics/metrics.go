// Package metrics provides Prometheus metrics for archive service operations.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Command dispatch metrics
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivefs_dispatch_total",
			Help: "Total number of commands dispatched to file and directory resources",
		},
		[]string{"resource", "command", "status"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archivefs_dispatch_duration_seconds",
			Help:    "Command dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "command"},
	)

	DispatchPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "archivefs_dispatch_panics_total",
			Help: "Total number of handler panics recovered by the dispatcher",
		},
	)

	// Archive maintenance metrics
	ArchiveOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivefs_archive_ops_total",
			Help: "Total number of archive operations",
		},
		[]string{"operation", "status"}, // status is "success" or the failing result code
	)

	OpenArchives = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archivefs_open_archives",
			Help: "Number of archive handles currently open",
		},
	)

	RegisteredArchiveTypes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archivefs_registered_archive_types",
			Help: "Number of archive types registered",
		},
	)

	// Save-data provisioning metrics
	ProvisionOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivefs_provision_ops_total",
			Help: "Total number of save-data container create and delete operations",
		},
		[]string{"kind", "operation", "status"},
	)

	// Session metrics
	OpenSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archivefs_open_sessions",
			Help: "Number of resource sessions currently registered",
		},
	)
)

// Status renders a result word as a metric label
func Status(code uint32) string {
	if code == 0 {
		return "success"
	}
	return fmt.Sprintf("0x%08X", code)
}
