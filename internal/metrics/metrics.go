package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raydium_swap_quotes_total",
			Help: "Total number of quote requests",
		},
		[]string{"swap_mode", "result"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "raydium_swap_quote_duration_seconds",
			Help:    "Quote duration in seconds, including pool discovery and snapshot reads",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"swap_mode"},
	)

	// Plan metrics
	PlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raydium_swap_plans_total",
			Help: "Total number of instruction plans built",
		},
		[]string{"kind", "result"},
	)

	PlanInstructions = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "raydium_swap_plan_instructions",
		Help:    "Number of instructions in a finalized plan",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 10},
	})

	// Simulation metrics
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raydium_swap_simulations_total",
			Help: "Compute unit simulations by outcome",
		},
		[]string{"outcome"},
	)

	ComputeUnitLimit = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "raydium_swap_compute_unit_limit",
		Help:    "Compute unit limit set from simulation",
		Buckets: []float64{50_000, 75_000, 100_000, 150_000, 200_000, 300_000, 400_000, 600_000, 1_400_000},
	})

	// RPC metrics
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raydium_swap_rpc_requests_total",
			Help: "JSON-RPC requests by method and status",
		},
		[]string{"method", "status"},
	)

	// Cache metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raydium_swap_cache_lookups_total",
			Help: "Discovery cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)
)
