// Package metrics объявляет метрики Prometheus сервиса рекомендаций.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendRequests считает запросы рекомендаций по режиму сортировки и исходу.
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routescout_recommend_requests_total",
			Help: "Total number of route recommendation requests",
		},
		[]string{"order", "status"},
	)

	// RankDuration - время построения TF-IDF пространства и расчета близости.
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routescout_rank_duration_seconds",
			Help:    "Time spent ranking candidates by text similarity",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CandidatesPerQuery - число кандидатов после фильтров по области и категории.
	CandidatesPerQuery = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routescout_candidates_per_query",
			Help:    "Number of candidates passed to the ranker",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routescout_store_query_duration_seconds",
			Help:    "Candidate store query latency by phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "phase"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routescout_store_errors_total",
			Help: "Candidate store failures by phase",
		},
		[]string{"backend", "phase"},
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routescout_catalog_cache_hits_total",
			Help: "Location catalog cache hits",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routescout_catalog_cache_misses_total",
			Help: "Location catalog cache misses",
		},
	)

	// BreakerState: 0 - closed, 1 - half-open, 2 - open.
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "routescout_store_breaker_state",
			Help: "Candidate store circuit breaker state",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routescout_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
