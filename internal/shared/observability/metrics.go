package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "funcgraph_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "funcgraph_analysis_seconds",
		Help:    "Time spent in each analysis pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FunctionsExtracted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "funcgraph_functions",
		Help: "Number of function records extracted by the latest run.",
	})

	GraphNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "funcgraph_graph_nodes",
		Help: "Number of nodes in the latest graph, by graph kind.",
	}, []string{"graph"})

	GraphEdges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "funcgraph_graph_edges",
		Help: "Number of edges in the latest graph, by graph kind.",
	}, []string{"graph"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "funcgraph_runs_total",
		Help: "Total number of analysis runs, by outcome.",
	}, []string{"status"})

	ArtifactsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "funcgraph_artifacts_written_total",
		Help: "Total number of artifacts written, by artifact kind.",
	}, []string{"artifact"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funcgraph_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funcgraph_watcher_throttled_total",
		Help: "Total number of watch-triggered runs skipped by the rate limiter.",
	})
)
