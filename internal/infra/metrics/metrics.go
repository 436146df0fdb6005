package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	PoolsFetchedTotal     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pools_fetched_total", Help: "Pools fetched by venue"}, []string{"venue"})
	PoolFetchErrorsTotal  = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pool_fetch_errors_total", Help: "Pool fetch failures by venue"}, []string{"venue"})
	MalformedPoolsTotal   = prometheus.NewCounter(prometheus.CounterOpts{Name: "malformed_pools_total", Help: "Pools skipped because they reference unknown tokens"})
	TokensTracked         = prometheus.NewGauge(prometheus.GaugeOpts{Name: "tokens_tracked", Help: "Distinct token addresses after merge"})
	GraphNodes            = prometheus.NewGauge(prometheus.GaugeOpts{Name: "graph_nodes", Help: "Graph nodes before reduction"})
	GraphNodesReduced     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "graph_nodes_reduced", Help: "Graph nodes after reduction"})
	GraphEdges            = prometheus.NewGauge(prometheus.GaugeOpts{Name: "graph_edges", Help: "Directed edges in the graph"})
	CyclesEnumeratedTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "cycles_enumerated_total", Help: "Closed cycles produced by the enumerator"})
	CyclesDegenerateTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "cycles_degenerate_total", Help: "Cycles skipped for a zero reserve on some hop"})
	CandidatesFoundTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "candidates_found_total", Help: "Cycles that passed the profitability test"})
	ScansTotal            = prometheus.NewCounter(prometheus.CounterOpts{Name: "scans_total", Help: "Completed scan passes"})
	ScanDurationMs        = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "scan_duration_ms", Help: "Wall time of one full scan", Buckets: prometheus.ExponentialBuckets(10, 2, 14)})
	RateProductBest       = prometheus.NewGauge(prometheus.GaugeOpts{Name: "rate_product_best", Help: "Best fee-adjusted rate product seen in the last scan"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		PoolsFetchedTotal, PoolFetchErrorsTotal, MalformedPoolsTotal, TokensTracked,
		GraphNodes, GraphNodesReduced, GraphEdges,
		CyclesEnumeratedTotal, CyclesDegenerateTotal, CandidatesFoundTotal,
		ScansTotal, ScanDurationMs, RateProductBest,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
