// Package metrics exposes the prometheus instruments of the gate allocation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	joins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaops_event_joins_total",
			Help: "Event joins by auto-assignment outcome (none, partial, full)",
		},
		[]string{"outcome"},
	)

	leaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vaops_event_leaves_total",
			Help: "Participants who left or were removed from events",
		},
	)

	gateAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaops_gate_assignments_total",
			Help: "Successful gate bindings by role and mode (explicit, auto, admin)",
		},
		[]string{"role", "mode"},
	)

	gateConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaops_gate_conflicts_total",
			Help: "Requests that lost a gate to another participant",
		},
		[]string{"operation"},
	)

	txRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vaops_tx_serialization_retries_total",
			Help: "Transactions retried after a serialization failure",
		},
	)
)

func ObserveJoin(outcome string) { joins.WithLabelValues(outcome).Inc() }

func ObserveLeave() { leaves.Inc() }

func ObserveGateAssignment(role, mode string) { gateAssignments.WithLabelValues(role, mode).Inc() }

func ObserveGateConflict(operation string) { gateConflicts.WithLabelValues(operation).Inc() }

func TxRetried() { txRetries.Inc() }
