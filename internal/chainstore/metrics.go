package chainstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chain store metrics
	BlocksInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterhub_chainstore_blocks_inserted_total",
			Help: "Total number of blocks written to the chain store",
		},
	)

	TransactionsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterhub_chainstore_transactions_inserted_total",
			Help: "Total number of transactions written to the chain store",
		},
	)

	BlocksRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_chainstore_blocks_removed_total",
			Help: "Total number of blocks removed from the chain store by reason",
		},
		[]string{"reason"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterhub_chainstore_operation_duration_seconds",
			Help:    "Duration of chain store operations",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)
)

func BlockInsertedInc(txCount int) {
	BlocksInserted.Inc()
	TransactionsInserted.Add(float64(txCount))
}

func BlocksRemovedAdd(reason string, count int64) {
	BlocksRemoved.WithLabelValues(reason).Add(float64(count))
}

func observe(operation string, start time.Time) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
