// Package metrics exposes prometheus counters for the generation
// pipeline. Registration happens once at package load.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	modelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_model_calls_total",
			Help: "Total number of language model calls, by pipeline stage.",
		},
		[]string{"stage"},
	)
	generationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_generation_failures_total",
			Help: "Total number of failed generation requests, by error kind.",
		},
		[]string{"kind"},
	)
	statementsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nl2sql_statements_generated_total",
			Help: "Total number of validated statements returned to callers.",
		},
	)
	statementsExecutedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nl2sql_statements_executed_total",
			Help: "Total number of generated statements executed for option lists.",
		},
	)
	generationLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nl2sql_generation_latency_ms",
			Help:    "End to end SQL generation latency in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		},
	)
	optionCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nl2sql_option_cache_hits_total",
			Help: "Total number of option cache hits.",
		},
	)
	optionCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nl2sql_option_cache_misses_total",
			Help: "Total number of option cache misses.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		modelCallsTotal,
		generationFailuresTotal,
		statementsGeneratedTotal,
		statementsExecutedTotal,
		generationLatencyMs,
		optionCacheHitsTotal,
		optionCacheMissesTotal,
	)
}

// Pipeline stages that issue model calls.
const (
	StageFilter     = "filter"
	StageGeneration = "generation"
)

func IncrementModelCall(stage string) {
	modelCallsTotal.WithLabelValues(stage).Inc()
}

func IncrementGenerationFailure(kind string) {
	generationFailuresTotal.WithLabelValues(kind).Inc()
}

func ObserveGeneration(elapsed time.Duration) {
	statementsGeneratedTotal.Inc()
	generationLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func IncrementStatementExecuted() {
	statementsExecutedTotal.Inc()
}

func IncrementOptionCacheHit() {
	optionCacheHitsTotal.Inc()
}

func IncrementOptionCacheMiss() {
	optionCacheMissesTotal.Inc()
}
