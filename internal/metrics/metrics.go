package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityweather_upstream_calls_total",
			Help: "Total upstream weather API calls",
		},
		[]string{"source", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityweather_upstream_latency_seconds",
			Help:    "Upstream weather API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityweather_lookups_total",
			Help: "Total city lookups by outcome",
		},
		[]string{"outcome"},
	)

	StaleOutcomesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cityweather_stale_outcomes_discarded_total",
			Help: "Lookup outcomes dropped because a newer lookup was started",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cityweather_active_sessions",
			Help: "Widget sessions currently held in memory",
		},
	)
)
