package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_upstream_requests_total",
			Help: "Upstream RPC requests by method and outcome (ok, cancelled, timeout, rpc, transport)",
		},
		[]string{"method", "outcome"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterhub_upstream_request_duration_seconds",
			Help:    "Duration of upstream RPC requests including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	upstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_upstream_retries_total",
			Help: "Upstream RPC retry attempts by method",
		},
		[]string{"method"},
	)

	receiptBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filterhub_upstream_receipt_batch_size",
			Help:    "Number of receipts requested per upstream batch call",
			Buckets: prometheus.LinearBuckets(10, 10, maxBatch/10),
		},
	)
)

// RequestLog records one upstream call, retries included.
func RequestLog(method string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errorType(err)
	}

	upstreamRequests.WithLabelValues(method, outcome).Inc()
	upstreamDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RetryInc(method string) {
	upstreamRetries.WithLabelValues(method).Inc()
}

func ReceiptBatchObserve(size int) {
	receiptBatchSize.Observe(float64(size))
}
