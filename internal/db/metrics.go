package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maintenanceRuns = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterhub_db_maintenance_duration_seconds",
			Help:    "Duration of chain store maintenance runs by outcome",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"status"},
	)

	walCheckpoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_db_wal_checkpoint_total",
			Help: "WAL checkpoints by mode",
		},
		[]string{"mode"},
	)

	vacuumRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterhub_db_vacuum_total",
			Help: "VACUUM runs",
		},
	)

	dbSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterhub_db_size_bytes",
			Help: "Chain store size in bytes including WAL files",
		},
	)

	dbReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterhub_db_reclaimed_bytes_total",
			Help: "Bytes freed by maintenance runs",
		},
	)
)

func MaintenanceRunLog(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	maintenanceRuns.WithLabelValues(status).Observe(duration.Seconds())
}

func WALCheckpointInc(mode string) {
	walCheckpoints.WithLabelValues(mode).Inc()
}

func VacuumRunsInc() {
	vacuumRuns.Inc()
}

// DBSizeLog records the store size after a maintenance run that started at before bytes.
func DBSizeLog(before, after int64) {
	dbSize.Set(float64(after))
	if before > after {
		dbReclaimed.Add(float64(before - after))
	}
}
