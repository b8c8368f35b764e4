package follower

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Follower metrics
	blocksImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterhub_follower_blocks_imported_total",
			Help: "Total number of blocks imported from the upstream node",
		},
	)

	localHead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterhub_follower_local_head",
			Help: "Highest block held by the local chain store",
		},
	)

	upstreamHead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterhub_follower_upstream_head",
			Help: "Latest block reported by the upstream node",
		},
	)

	rewoundBlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterhub_follower_rewound_blocks_total",
			Help: "Total number of blocks discarded because of reorgs",
		},
	)

	stepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterhub_follower_step_errors_total",
			Help: "Total number of failed follower iterations",
		},
	)
)

func BlockImportedLog(number uint64) {
	blocksImported.Inc()
	localHead.Set(float64(number))
}

func UpstreamHeadSet(number uint64) {
	upstreamHead.Set(float64(number))
}

func RewoundLog(removed int64, head uint64) {
	rewoundBlocks.Add(float64(removed))
	localHead.Set(float64(head))
}

func StepErrorInc() {
	stepErrors.Inc()
}
