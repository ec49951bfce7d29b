// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream call outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeStatus  = "status"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_export_upstream_requests_total",
			Help: "Upstream search calls by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_export_upstream_request_duration_seconds",
			Help:    "Duration of upstream search calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	LeadsReturned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_export_leads_returned_total",
			Help: "Total number of normalized leads returned to callers",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_export_http_requests_total",
			Help: "HTTP requests served by route and status code",
		},
		[]string{"route", "code"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
