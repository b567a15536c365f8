package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "history",
			Name:      "fetches_total",
			Help:      "Page fetches by mode and result.",
		},
		[]string{"mode", "result"},
	)

	staleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "history",
			Name:      "stale_responses_total",
			Help:      "Fetch responses dropped because the mode or query changed while they were in flight.",
		},
	)

	rollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "history",
			Name:      "rollbacks_total",
			Help:      "Optimistic mutations rolled back after a backend failure.",
		},
		[]string{"field"},
	)

	liveEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "history",
			Name:      "live_events_total",
			Help:      "Live capture events by how they were merged.",
		},
		[]string{"outcome"},
	)
)
