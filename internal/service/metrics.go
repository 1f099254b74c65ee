package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"golang-papertrade/internal/strategy"
)

const metricsNamespace = "papertrade"

// Run kinds used as the "kind" label.
const (
	runKindBacktest   = "backtest"
	runKindMonteCarlo = "montecarlo"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus collectors of the simulation services.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	AssetFailures *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg keeps them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by kind, strategy and status",
		}, []string{"kind", "strategy", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Duration of simulation runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind", "strategy"}),
		AssetFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "engine",
			Name:      "asset_failures_total",
			Help:      "Total number of instruments excluded from a run",
		}, []string{"kind"}),
	}
}

// observeRun records the outcome of one run. Unregistered strategy names share
// one label value so request input cannot grow the series count.
func (m *Metrics) observeRun(kind string, strategies *strategy.Registry, name string, start time.Time, err error) {
	if m == nil {
		return
	}
	if _, lookupErr := strategies.Get(name); lookupErr != nil {
		name = "unknown"
	}

	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.RunsTotal.WithLabelValues(kind, name, status).Inc()
	m.RunDuration.WithLabelValues(kind, name).Observe(time.Since(start).Seconds())
}

func (m *Metrics) addFailures(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.AssetFailures.WithLabelValues(kind).Add(float64(n))
}
