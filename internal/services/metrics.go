// Package services – Prometheus instrumentation for the selection engine.
//
// Counters are labeled with bounded sets only (command names from the fixed
// registry, rejection reasons from the fixed enum, table names from the
// schema) so cardinality stays small.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// selectionsTotal counts genuine (non-replay) selections per command.
	selectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_selections_total",
			Help: "Total number of daily selections performed.",
		},
		[]string{"command"},
	)

	// replaysTotal counts same-day invocations served from the stored selection.
	replaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_selection_replays_total",
			Help: "Total number of idempotent replays of an existing selection.",
		},
		[]string{"command"},
	)

	// rejectionsTotal counts policy rejections by reason.
	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_rejections_total",
			Help: "Total number of policy-rejected invocations.",
		},
		[]string{"command", "reason"},
	)

	// sweepDeletedTotal counts rows removed by the retention sweep.
	sweepDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_sweep_deleted_rows_total",
			Help: "Total number of rows removed by retention sweeps.",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(selectionsTotal, replaysTotal, rejectionsTotal, sweepDeletedTotal)
}
