package reorg

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	checkParent = "parent"
	checkStored = "stored"
)

var (
	reorgChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_reorg_checks_total",
			Help: "Chain continuity checks by kind and whether they found a reorg",
		},
		[]string{"check", "reorg"},
	)

	reorgDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filterhub_reorg_depth_blocks",
			Help:    "Number of stored blocks replaced by each reorg",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	reorgForkBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterhub_reorg_last_fork_block",
			Help: "First block replaced by the most recent reorg",
		},
	)
)

func reorgCheckInc(check string, reorged bool) {
	reorgChecks.WithLabelValues(check, strconv.FormatBool(reorged)).Inc()
}

// ReorgDetectedLog records a reorg that replaced depth blocks starting at forkBlock.
func ReorgDetectedLog(depth, forkBlock uint64) {
	reorgDepth.Observe(float64(depth))
	reorgForkBlock.Set(float64(forkBlock))
}
