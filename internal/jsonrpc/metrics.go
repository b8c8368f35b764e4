package jsonrpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JSON-RPC API metrics
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_api_requests_total",
			Help: "Total number of JSON-RPC requests by method",
		},
		[]string{"method"},
	)

	apiErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_api_errors_total",
			Help: "Total number of JSON-RPC errors by method and error code",
		},
		[]string{"method", "code"},
	)

	apiDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterhub_api_request_duration_seconds",
			Help:    "Duration of JSON-RPC requests by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_http_requests_total",
			Help: "Total number of HTTP requests by status code",
		},
		[]string{"status"},
	)
)

func APIRequestLog(method string, duration time.Duration) {
	apiRequests.WithLabelValues(method).Inc()
	apiDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func APIErrorInc(method, code string) {
	apiErrors.WithLabelValues(method, code).Inc()
}

func HTTPRequestInc(status string) {
	httpRequests.WithLabelValues(status).Inc()
}
