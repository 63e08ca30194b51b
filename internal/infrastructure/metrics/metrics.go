package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(NewRegistry),
	fx.Provide(NewMetrics),
)

// Stages of a signature
const (
	StageStart    = "start"
	StageComplete = "complete"
)

// Metrics exposes signature outcomes and REST PKI call latency.
type Metrics struct {
	signatures     *prometheus.CounterVec
	restpkiLatency *prometheus.HistogramVec
}

// NewRegistry returns the registry served on /metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics registers the collectors in reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		signatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restpki_batch",
			Name:      "signatures_total",
			Help:      "Signature operations by stage and outcome code",
		}, []string{"stage", "outcome"}),
		restpkiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "restpki_batch",
			Subsystem: "restpki",
			Name:      "request_duration_ms",
			Help:      "Round trip time of REST PKI calls in milliseconds",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"operation", "status"}),
	}
	reg.MustRegister(m.signatures, m.restpkiLatency)
	return m
}

// IncSignature counts one start or complete with its outcome ("ok" or an error code).
func (m *Metrics) IncSignature(stage, outcome string) {
	if m == nil {
		return
	}
	m.signatures.WithLabelValues(stage, outcome).Inc()
}

// ObserveRestPKI records a REST PKI round trip.
func (m *Metrics) ObserveRestPKI(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.restpkiLatency.WithLabelValues(operation, status).Observe(float64(duration) / float64(time.Millisecond))
}
