/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package metrics defines Prometheus metrics for the maintenance API client.
//
// All metrics register with the default registry; long-running embedders
// expose them however they already serve /metrics.
//
// Metric naming follows Prometheus conventions:
//   - maintdesk_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// APIRequestsTotal counts API calls by resource, method, and HTTP status.
	// Transport failures record with code "network_error".
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintdesk_api_requests_total",
			Help: "Total API requests by resource, method, and status code.",
		},
		[]string{"resource", "method", "code"},
	)

	// APIRequestDurationSeconds is a histogram of request duration by resource.
	APIRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maintdesk_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource"},
	)

	// SessionExpiriesTotal counts forced logouts after a 401 response.
	SessionExpiriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "maintdesk_session_expiries_total",
			Help: "Total sessions invalidated after an unauthorized response.",
		},
	)

	// StatsFallbacksTotal counts client-side statistics recomputations taken
	// because the dedicated summary endpoint was missing.
	StatsFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintdesk_stats_fallbacks_total",
			Help: "Total client-side statistics fallbacks by resource.",
		},
		[]string{"resource"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal,
		APIRequestDurationSeconds,
		SessionExpiriesTotal,
		StatsFallbacksTotal,
	)
}

// RecordRequest records one completed API request.
func RecordRequest(resource, method string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(resource, method, strconv.Itoa(statusCode)).Inc()
	APIRequestDurationSeconds.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordNetworkFailure records a request that never produced an HTTP status.
func RecordNetworkFailure(resource, method string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(resource, method, "network_error").Inc()
	APIRequestDurationSeconds.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordSessionExpiry records a forced session invalidation.
func RecordSessionExpiry() {
	SessionExpiriesTotal.Inc()
}

// RecordStatsFallback records one client-side statistics recomputation.
func RecordStatsFallback(resource string) {
	StatsFallbacksTotal.WithLabelValues(resource).Inc()
}
