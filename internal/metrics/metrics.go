package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storedash_delivery_fetches_total",
		Help: "Delivery list fetches by data source and result.",
	},
		[]string{"source", "result"},
	)

	FallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storedash_delivery_fallbacks_total",
		Help: "Fetches answered by the synthetic fallback after a backend failure.",
	})

	StaleResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storedash_stale_responses_total",
		Help: "Fetch responses discarded because a newer request superseded them.",
	})

	StatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storedash_status_updates_total",
		Help: "Delivery status update attempts by result.",
	},
		[]string{"result"},
	)

	RefreshCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storedash_refresh_cycles_total",
		Help: "Completed active-deliveries refresh cycles.",
	})

	RefreshErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storedash_refresh_errors_total",
		Help: "Refresh failures by stage.",
	},
		[]string{"stage"},
	)

	SnapshotsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storedash_snapshots_stored_total",
		Help: "Refresh snapshots written to the cache by the dashboard consumer.",
	})
)
