// Package metrics exposes Prometheus collectors for the progression engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vitality"

var (
	// ActivitiesRecorded counts committed activities by type and kind.
	ActivitiesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "activity",
		Name:      "recorded_total",
		Help:      "Activities committed, by activity type and kind.",
	}, []string{"activity_type", "kind"})

	// ActivitiesRejected counts activities refused before mutation.
	ActivitiesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "activity",
		Name:      "rejected_total",
		Help:      "Activities rejected before any mutation, by reason.",
	}, []string{"reason"})

	// XPAwarded sums overall XP granted by activities.
	XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "activity",
		Name:      "xp_awarded_total",
		Help:      "Overall XP granted by committed activities.",
	})

	// TicksApplied counts ticks by kind and status (applied or skipped).
	TicksApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tick",
		Name:      "processed_total",
		Help:      "Scheduled ticks processed, by kind and status.",
	}, []string{"tick", "status"})

	// CapacityDelta observes the weekly capacity change per user.
	CapacityDelta = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tick",
		Name:      "weekly_capacity_delta",
		Help:      "Capacity change applied by weekly evaluations.",
		Buckets:   []float64{-6, -5, -4, -3, -2, -1, 0, 1, 2},
	})

	// Transitions counts burnout state machine transitions.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "burnout",
		Name:      "transitions_total",
		Help:      "Phase transitions, by source and target phase.",
	}, []string{"from", "to"})

	// PersistFailures counts commits abandoned because the snapshot could
	// not be saved.
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "persist_failures_total",
		Help:      "State commits abandoned because persistence failed.",
	})

	// UsersLoaded tracks how many user states are resident in memory.
	UsersLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "users_loaded",
		Help:      "User states resident in memory.",
	})

	// SchedulerRunDuration observes how long a full scheduler pass takes.
	SchedulerRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "run_duration_seconds",
		Help:      "Duration of one catch-up pass over all users.",
		Buckets:   prometheus.DefBuckets,
	})
)
