package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	GenerationsTotal prometheus.Counter
	BestScore        prometheus.Gauge
	RunDuration      prometheus.Histogram
}

// New 在 reg 上注册所有指标，测试中可以传入独立的 prometheus.NewRegistry()
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocator_runs_total",
				Help: "Total number of allocation runs by final status",
			},
			[]string{"status"},
		),
		GenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "allocator_generations_total",
				Help: "Total number of evaluated generations across all runs",
			},
		),
		BestScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "allocator_best_score",
				Help: "Best fitness score of the most recently evaluated generation",
			},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "allocator_run_duration_seconds",
				Help:    "Wall time of a complete allocation run",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
	}
}

func (m *Metrics) ObserveGeneration(bestScore float64) {
	m.GenerationsTotal.Inc()
	m.BestScore.Set(bestScore)
}

func (m *Metrics) ObserveRun(status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
}
