package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
)

// Metrics holds the Prometheus counters, histograms, and gauges of the comfort evaluations.
type Metrics struct {
	Evaluations                prometheus.Counter
	InvalidInputs              prometheus.Counter
	NotConverged               prometheus.Counter
	SolverIterations           prometheus.Histogram
	PMV                        prometheus.Gauge
	PPD                        prometheus.Gauge
	ClothingSurfaceTemperature prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "thermocomfort",
			Name:      "evaluations_total",
			Help:      "Total PMV/PPD evaluations.",
		}),
		InvalidInputs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "thermocomfort",
			Name:      "invalid_inputs_total",
			Help:      "Evaluations rejected because no humidity was supplied.",
		}),
		NotConverged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "thermocomfort",
			Name:      "solver_not_converged_total",
			Help:      "Evaluations whose clothing surface temperature solve hit the iteration cap.",
		}),
		SolverIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "thermocomfort",
			Name:      "solver_iterations",
			Help:      "Iterations of the clothing surface temperature solve.",
			Buckets:   []float64{1, 2, 3, 4, 5, 7, 10, 20, 50, 100, 150},
		}),
		PMV: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "thermocomfort",
			Name:      "pmv",
			Help:      "Last predicted mean vote.",
		}),
		PPD: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "thermocomfort",
			Name:      "ppd_percent",
			Help:      "Last predicted percentage of dissatisfied.",
		}),
		ClothingSurfaceTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "thermocomfort",
			Name:      "clothing_surface_temperature_celsius",
			Help:      "Last clothing surface temperature.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	return m, reg
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Evaluations,
		m.InvalidInputs,
		m.NotConverged,
		m.SolverIterations,
		m.PMV,
		m.PPD,
		m.ClothingSurfaceTemperature,
	}
}

// ObserveEvaluation records one evaluation. It satisfies zone.Observer.
func (m *Metrics) ObserveEvaluation(ev comfort.Evaluation, err error) {
	if err != nil {
		if errors.Is(err, comfort.ErrInvalidInput) {
			m.InvalidInputs.Inc()
		}
		return
	}
	m.Evaluations.Inc()
	m.SolverIterations.Observe(float64(ev.Iterations))
	if !ev.Converged {
		m.NotConverged.Inc()
	}
	m.PMV.Set(ev.PMV)
	m.PPD.Set(ev.PPD)
	m.ClothingSurfaceTemperature.Set(ev.ClothingSurfaceTemperature)
}
