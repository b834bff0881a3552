package integral

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work done by evaluators. A nil *Metrics records nothing.
type Metrics struct {
	Elements         prometheus.Counter
	SkippedElements  prometheus.Counter
	QuadraturePoints prometheus.Counter
	Reductions       prometheus.Counter
	RunDuration      *prometheus.HistogramVec
}

// NewMetrics registers the evaluator metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Elements: f.NewCounter(prometheus.CounterOpts{
			Name: "fracture_integral_elements_total",
			Help: "Elements integrated by interaction integral evaluators",
		}),
		SkippedElements: f.NewCounter(prometheus.CounterOpts{
			Name: "fracture_integral_elements_skipped_total",
			Help: "Elements skipped because q vanishes on all their nodes",
		}),
		QuadraturePoints: f.NewCounter(prometheus.CounterOpts{
			Name: "fracture_integral_quadrature_points_total",
			Help: "Quadrature points evaluated",
		}),
		Reductions: f.NewCounter(prometheus.CounterOpts{
			Name: "fracture_integral_reductions_total",
			Help: "Global sums performed by GetValue",
		}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fracture_integral_run_duration_seconds",
			Help:    "Duration of multi-unit interaction integral runs",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"q_function"}),
	}
}

func (m *Metrics) element(skipped bool, nqp int) {
	if m == nil {
		return
	}
	if skipped {
		m.SkippedElements.Inc()
		return
	}
	m.Elements.Inc()
	m.QuadraturePoints.Add(float64(nqp))
}

func (m *Metrics) reduction() {
	if m == nil {
		return
	}
	m.Reductions.Inc()
}

func (m *Metrics) observeRun(qf QFunctionType, seconds float64) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(qf.String()).Observe(seconds)
}
