package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_completed_total",
		Help: "Total number of purchases committed",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of the full checkout operation",
		Buckets: prometheus.DefBuckets,
	})

	ProductsArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_archived_total",
		Help: "Total number of products deleted and tombstoned",
	})

	HistoryRewritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "history_rewrites_total",
		Help: "Total number of user documents rewritten during archival fan-out",
	})

	ArchivalRewriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "archival_rewrite_latency_seconds",
		Help:    "Latency of the archival history rewrite",
		Buckets: prometheus.DefBuckets,
	})

	ProductCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_hits_total",
		Help: "Product list cache hits",
	})

	ProductCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_misses_total",
		Help: "Product list cache misses",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
