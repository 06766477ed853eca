// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("bnmc")

var (
	// queryTotal counts queries by strategy and result
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bnmc_query_total",
		Help: "Total number of queries by strategy and result",
	}, []string{"strategy", "result"})

	// queryDuration tracks query latency
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bnmc_query_duration_seconds",
		Help:    "Query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"strategy"})

	// taskTotal counts tasks executed by the parallel schedulers
	taskTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bnmc_task_total",
		Help: "Total number of tier tasks executed by parallel schedulers",
	}, []string{"strategy"})

	// cacheLookups counts cache lookups of the recursive strategies
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bnmc_cache_lookups_total",
		Help: "Total number of cache lookups by result (hit or miss)",
	}, []string{"result"})
)

// record publishes the counters of a finished query.
func record(s Strategy, stat cacheStat, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	queryTotal.WithLabelValues(s.String(), result).Inc()
	if stat.tasks > 0 {
		taskTotal.WithLabelValues(s.String()).Add(float64(stat.tasks))
	}
	if stat.hits > 0 {
		cacheLookups.WithLabelValues("hit").Add(float64(stat.hits))
	}
	if stat.misses > 0 {
		cacheLookups.WithLabelValues("miss").Add(float64(stat.misses))
	}
}
