package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collatzgraph",
		Name:      "runs_total",
		Help:      "Total number of runs computed, by outcome",
	}, []string{"status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "collatzgraph",
		Name:      "run_duration_seconds",
		Help:      "Wall time of computed runs",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
	})

	nodesTabulated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "collatzgraph",
		Name:      "nodes_tabulated_total",
		Help:      "Total number of values classified by runs",
	})

	partitionsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collatzgraph",
		Name:      "partitions_dispatched_total",
		Help:      "Partitions sent to a submitter",
	}, []string{"submitter"})

	sweepsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "collatzgraph",
		Name:      "sweeps_in_flight",
		Help:      "Sweeps currently running",
	})

	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collatzgraph",
		Name:      "queries_total",
		Help:      "Level queries served, by operation",
	}, []string{"operation"})
)
