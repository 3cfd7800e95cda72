package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

// Metrics exposes probe outcomes to Prometheus. The registry is injected so
// tests can assert against an isolated one.
type Metrics struct {
	ProbesTotal   *prometheus.CounterVec
	ProbeLatency  *prometheus.HistogramVec
	IntegrationUp *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "integration_health",
			Name:      "probes_total",
			Help:      "Probe attempts by integration and outcome.",
		}, []string{"integration", "outcome"}),
		ProbeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "integration_health",
			Name:      "probe_latency_seconds",
			Help:      "Probe round-trip latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"integration"}),
		IntegrationUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "integration_health",
			Name:      "integration_up",
			Help:      "1 when the last probe succeeded, 0 otherwise.",
		}, []string{"integration"}),
	}
	reg.MustRegister(m.ProbesTotal, m.ProbeLatency, m.IntegrationUp)
	return m
}

func (m *Metrics) ObserveProbe(result domain.ProbeResult) {
	outcome := "success"
	up := 1.0
	if !result.Success {
		outcome = result.Reason
		if outcome == "" {
			outcome = domain.ReasonUnexpectedError
		}
		up = 0
	}
	m.ProbesTotal.WithLabelValues(result.Integration, outcome).Inc()
	m.ProbeLatency.WithLabelValues(result.Integration).Observe(result.LatencyMS / 1000)
	m.IntegrationUp.WithLabelValues(result.Integration).Set(up)
}
