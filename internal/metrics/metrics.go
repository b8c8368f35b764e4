package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterhub_uptime_seconds",
			Help: "Seconds since the process started",
		},
	)

	componentErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterhub_errors_total",
			Help: "Errors that stopped a component, by component and severity",
		},
		[]string{"component", "severity"},
	)

	componentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filterhub_component_health",
			Help: "1 while a component is running, 0 once it stopped",
		},
		[]string{"component"},
	)

	goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterhub_goroutines",
			Help: "Number of live goroutines",
		},
	)

	memory = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filterhub_memory_usage_bytes",
			Help: "Go runtime memory statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func ErrorsInc(component, severity string) {
	componentErrors.WithLabelValues(component, severity).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	var v float64
	if healthy {
		v = 1
	}

	componentHealth.WithLabelValues(component).Set(v)
}

// UpdateSystemMetrics samples the Go runtime.
func UpdateSystemMetrics() {
	uptime.Set(time.Since(startTime).Seconds())
	goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	for kind, value := range map[string]uint64{
		"alloc":       m.Alloc,
		"total_alloc": m.TotalAlloc,
		"sys":         m.Sys,
		"heap_inuse":  m.HeapInuse,
	} {
		memory.WithLabelValues(kind).Set(float64(value))
	}
}
