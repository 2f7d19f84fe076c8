// Package metrics defines and registers the custom Prometheus metrics of the
// FincaTec domain store. All collectors are registered with the default
// registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fincatec"

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreWritesTotal counts collection blobs written back to the backend.
// Label:
//   - key: the logical collection key (e.g. "livestock", "potreros")
var StoreWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_writes_total",
		Help:      "Total number of collection writes issued to the key-value backend.",
	},
	[]string{"key"},
)

// OperationsTotal counts domain operations by outcome.
// Labels:
//   - operation: e.g. "add_animal", "assign_group"
//   - result: "ok" or the matched domain error ("not_found", "capacity_exceeded", ...)
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of domain store operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Pasture metrics ───────────────────────────────────────────────────────────

// OccupancyRepairsTotal counts pastures whose cached occupancy had drifted
// from the assigned groups' headcount and was rewritten.
var OccupancyRepairsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "occupancy_repairs_total",
		Help:      "Total number of pasture occupancy values corrected by reconciliation.",
	},
)

// ── Appointment metrics ───────────────────────────────────────────────────────

// AppointmentTransitionsTotal counts appointment state changes.
// Label:
//   - to: the new state (e.g. "aceptada", "completada")
var AppointmentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_transitions_total",
		Help:      "Total number of appointment state transitions, by target state.",
	},
	[]string{"to"},
)
