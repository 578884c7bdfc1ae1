package bench

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - счётчики запусков бенчмарка в отдельном реестре Prometheus.
type Metrics struct {
	Registry *prometheus.Registry
	// Runs counts solver runs by algorithm, instance and outcome.
	Runs *prometheus.CounterVec
	// RunDuration records run durations in seconds.
	RunDuration *prometheus.HistogramVec
	// BestDistance holds the best feasible distance per algorithm and instance.
	BestDistance *prometheus.GaugeVec
	// Evaluations counts solutions decoded and scored.
	Evaluations *prometheus.CounterVec
}

const (
	statusFeasible   = "feasible"
	statusInfeasible = "infeasible"
	statusTimeout    = "timeout"
)

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "evrp_runs_total", Help: "Solver runs by algorithm, instance and status."},
			[]string{"algo", "instance", "status"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "evrp_run_duration_seconds", Help: "Solver run duration in seconds.", Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120}},
			[]string{"algo", "instance"},
		),
		BestDistance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "evrp_best_distance", Help: "Best feasible total distance found."},
			[]string{"algo", "instance"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "evrp_evaluations_total", Help: "Solutions built and evaluated."},
			[]string{"algo"},
		),
	}
	m.Registry.MustRegister(m.Runs, m.RunDuration, m.BestDistance, m.Evaluations)
	return m
}

// WriteFile dumps the registry in the Prometheus text format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
