package neorecipe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neorecipe_queries_total",
			Help: "Total number of queries sent to the graph store",
		},
		[]string{"outcome"},
	)

	queryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "neorecipe_query_duration_seconds",
			Help:    "Graph store query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	operationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neorecipe_operation_errors_total",
			Help: "Total number of failed catalog operations by operation and error code",
		},
		[]string{"op", "code"},
	)
)

func observeQuery(d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	queriesTotal.WithLabelValues(outcome).Inc()
	queryDuration.Observe(d.Seconds())
}

func observeOperationError(op string, err error) {
	code := string(CodeOf(err))
	if code == "" {
		code = "UNKNOWN"
	}
	operationErrors.WithLabelValues(op, code).Inc()
}
