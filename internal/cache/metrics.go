package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookwise_cache_hits_total",
		Help: "Cache hits by operation.",
	}, []string{"op"})
	missesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookwise_cache_misses_total",
		Help: "Cache misses by operation, including store failures degraded to misses.",
	}, []string{"op"})
)

// ObserveHit records a cache hit for an operation.
func ObserveHit(op string) { hitsTotal.WithLabelValues(op).Inc() }

// ObserveMiss records a cache miss for an operation.
func ObserveMiss(op string) { missesTotal.WithLabelValues(op).Inc() }
