package amd

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the solver and mission counters, registered on a caller provided registerer.
type Metrics struct {
	Iterations  prometheus.Histogram
	Evaluations prometheus.Counter
	Segments    *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics. A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "amd",
			Subsystem: "solver",
			Name:      "iterations",
			Help:      "Newton iterations needed by converged segments.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amd",
			Subsystem: "solver",
			Name:      "residual_evaluations_total",
			Help:      "Residual evaluations, including the finite difference ones.",
		}),
		Segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amd",
			Subsystem: "mission",
			Name:      "segments_total",
			Help:      "Evaluated segments by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Iterations, m.Evaluations, m.Segments)
	}
	return m
}

func (m *Metrics) segment(kind SegmentKind, outcome string) {
	if m != nil {
		m.Segments.WithLabelValues(kind.String(), outcome).Inc()
	}
}
