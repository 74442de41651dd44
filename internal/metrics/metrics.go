// Package metrics holds the prometheus collectors for lifecycle transitions
// and package installs. The CLI is short-lived, so collectors live in a
// private registry that can be dumped in the node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the private registry every collector below is registered with.
var Registry = prometheus.NewRegistry()

var (
	// TransitionsTotal counts coordinator operations by op and outcome.
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plugmgr_lifecycle_transitions_total",
			Help: "Number of enable/disable/reload requests by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// StepFailuresTotal counts failed sub-operations inside multi-step reloads.
	StepFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plugmgr_lifecycle_step_failures_total",
			Help: "Number of failed enable/disable steps issued to the host registry.",
		},
		[]string{"action"},
	)

	// InstallsTotal counts loader install items by their final status.
	InstallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plugmgr_loader_installs_total",
			Help: "Number of packages processed by the loader by install status.",
		},
		[]string{"status"},
	)

	// LoadsTotal counts load operations by result kind ("ok" or an error kind).
	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plugmgr_loader_loads_total",
			Help: "Number of load operations by result.",
		},
		[]string{"result"},
	)

	// LoadDuration observes the wall time of complete load operations.
	LoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plugmgr_loader_load_duration_seconds",
			Help:    "Time taken to acquire, resolve and install a package set.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	Registry.MustRegister(
		TransitionsTotal,
		StepFailuresTotal,
		InstallsTotal,
		LoadsTotal,
		LoadDuration,
	)
}

// WriteTextfile writes the current state of Registry to path in the
// prometheus text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
