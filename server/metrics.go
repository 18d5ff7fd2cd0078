package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeError      = "error"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	words    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgen_generate_requests_total",
			Help: "Generate requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contentgen_generate_duration_seconds",
			Help:    "Time spent serving generate requests.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		words: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contentgen_generated_words",
			Help:    "Word count of generated content.",
			Buckets: prometheus.ExponentialBuckets(25, 2, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.words} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(outcome string, start time.Time) {
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(time.Since(start).Seconds())
}
