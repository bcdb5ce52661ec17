// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

// Package metrics exposes Prometheus instrumentation for Vicinity:
// neighborhood search latency and fan-out, rating-vector cache efficiency,
// rating store throughput, and API endpoint metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Neighborhood search metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vicinity_search_duration_seconds",
			Help:    "Duration of neighborhood searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchNeighbors = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vicinity_search_neighbors",
			Help:    "Neighbors returned per neighborhood search, summed over target items",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	SearchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicinity_search_errors_total",
			Help: "Total neighborhood search failures",
		},
		[]string{"reason"}, // "bad_request", "data_access"
	)

	// Rating-vector cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vicinity_vector_cache_hits_total",
			Help: "Rating-vector cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vicinity_vector_cache_misses_total",
			Help: "Rating-vector cache misses (vector rebuilds)",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vicinity_vector_cache_entries",
			Help: "Distinct users currently held by the rating-vector cache",
		},
	)

	// Rating store metrics
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vicinity_store_op_duration_seconds",
			Help:    "Duration of rating store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "add_rating", "ratings_for_user", "users_for_item"
	)

	RatingsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vicinity_ratings_ingested_total",
			Help: "Rating events accepted through the API",
		},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vicinity_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vicinity_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
)

// RecordAPIRequest records one API request observation.
func RecordAPIRequest(endpoint, method string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// RecordStoreOp records the duration of one rating store operation.
func RecordStoreOp(operation string, duration time.Duration) {
	StoreOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
