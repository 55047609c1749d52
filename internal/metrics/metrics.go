// Package metrics exposes cycle counters for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests and multiple engines do not
// collide on the global one.
type Recorder struct {
	reg *prometheus.Registry

	Cycles         *prometheus.CounterVec
	Vetoes         *prometheus.CounterVec
	Attempts       *prometheus.CounterVec
	CycleDuration  prometheus.Histogram
	LastConfidence prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "strikebot_cycles_total", Help: "Engine cycles by outcome"},
			[]string{"outcome"},
		),
		Vetoes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "strikebot_vetoes_total", Help: "Vetoed decisions by kind"},
			[]string{"kind"},
		),
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "strikebot_order_attempts_total", Help: "Order submissions by outcome"},
			[]string{"outcome"},
		),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "strikebot_cycle_duration_seconds",
			Help:    "Wall time of one engine cycle",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}),
		LastConfidence: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "strikebot_last_confidence",
			Help: "Confidence of the most recent decision",
		}),
	}
	r.reg.MustRegister(
		r.Cycles, r.Vetoes, r.Attempts, r.CycleDuration, r.LastConfidence,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveCycle is nil-safe so the engine can run without metrics.
func (r *Recorder) ObserveCycle(outcome, vetoKind string, confidence float64, attempts []string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Cycles.WithLabelValues(outcome).Inc()
	if vetoKind != "" {
		r.Vetoes.WithLabelValues(vetoKind).Inc()
	}
	for _, a := range attempts {
		r.Attempts.WithLabelValues(a).Inc()
	}
	if confidence > 0 {
		r.LastConfidence.Set(confidence)
	}
	r.CycleDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
