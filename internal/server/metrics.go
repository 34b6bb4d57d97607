package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Compilation outcomes used as the status label.
const (
	statusOK       = "ok"
	statusPartial  = "partial"
	statusFailed   = "failed"
	statusRejected = "rejected"
)

type metrics struct {
	compilations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		compilations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xmd",
			Name:      "compilations_total",
			Help:      "Compilation requests by template and outcome",
		}, []string{"template", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "xmd",
			Name:      "compilation_duration_seconds",
			Help:      "Time spent compiling a document",
			Buckets:   prometheus.DefBuckets,
		}, []string{"template"}),
	}
	reg.MustRegister(m.compilations, m.duration)
	return m
}

func (m *metrics) observe(template, status string, d time.Duration) {
	m.compilations.WithLabelValues(template, status).Inc()
	if status != statusRejected {
		m.duration.WithLabelValues(template).Observe(d.Seconds())
	}
}
