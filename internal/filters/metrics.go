package filters

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindBlock = "block"
	kindLog   = "log"
)

var (
	filtersInstalled = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filterhub_filters_installed",
			Help: "Number of installed filters by kind",
		},
		[]string{"kind"},
	)

	filterPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_filter_polls_total",
			Help: "Total number of filter polls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	filterPollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterhub_filter_poll_duration_seconds",
			Help:    "Duration of filter polls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	filterPollResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_filter_poll_results_total",
			Help: "Total number of block hashes and logs returned by polls",
		},
		[]string{"kind"},
	)

	filtersEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_filters_evicted_total",
			Help: "Total number of filters evicted for being idle",
		},
		[]string{"kind"},
	)

	filtersInvalidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_filters_invalidated_total",
			Help: "Total number of log filters removed because a poll failed",
		},
		[]string{"reason"},
	)

	hubQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterhub_hub_queue_depth",
			Help: "Number of commands waiting in the filter hub queue",
		},
	)
)

func FiltersInstalledSet(blocks, logs int) {
	filtersInstalled.WithLabelValues(kindBlock).Set(float64(blocks))
	filtersInstalled.WithLabelValues(kindLog).Set(float64(logs))
}

func FilterPollLog(kind string, duration time.Duration, results int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	filterPolls.WithLabelValues(kind, outcome).Inc()
	filterPollDuration.WithLabelValues(kind).Observe(duration.Seconds())
	filterPollResults.WithLabelValues(kind).Add(float64(results))
}

func FiltersEvictedAdd(kind string, n int) {
	filtersEvicted.WithLabelValues(kind).Add(float64(n))
}

func FilterInvalidatedInc(reason string) {
	filtersInvalidated.WithLabelValues(reason).Inc()
}

func HubQueueDepthSet(depth int) {
	hubQueueDepth.Set(float64(depth))
}
