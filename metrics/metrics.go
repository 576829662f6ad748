// Package metrics provides Prometheus metrics for the wikibot client.
// It tracks API request counts, latencies, pagination progress, and batch
// mutation outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "wikibot"
)

var (
	// APIRequests counts MediaWiki API calls by action and outcome
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total MediaWiki API requests by action and status",
	}, []string{"action", "status"})

	// APIRequestDuration measures API call latency distribution
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_request_duration_seconds",
		Help:      "MediaWiki API request latency distribution by action",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"action"})

	// ListPages counts continuation pages fetched per list operation
	ListPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "list_pages_total",
		Help:      "Continuation pages fetched by list operation",
	}, []string{"operation"})

	// BatchItems counts batch mutation items by action and outcome
	BatchItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "batch_items_total",
		Help:      "Batch mutation items processed by action and status",
	}, []string{"action", "status"})
)
