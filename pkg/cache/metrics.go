package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uzgidro/lex-parser/pkg/metrics"
)

var (
	// CacheHits tracks fresh reads.
	CacheHits = promauto.With(metrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lex_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	// CacheMisses tracks reads of absent or expired keys.
	CacheMisses = promauto.With(metrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lex_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	// CacheEvictions tracks removals by reason.
	CacheEvictions = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lex_cache_evictions_total",
			Help: "Total number of result cache removals by reason",
		},
		[]string{"reason"}, // "expired", "capacity"
	)

	// CacheEntries tracks the current store size.
	CacheEntries = promauto.With(metrics.Registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lex_cache_entries",
			Help: "Current number of entries in the result cache",
		},
	)
)
