package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

func TestObserveProbeOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveProbe(domain.ProbeResult{Integration: "stripe", Success: true, LatencyMS: 120})
	m.ObserveProbe(domain.ProbeResult{Integration: "stripe", Reason: domain.ReasonTimeout, LatencyMS: 10000})
	m.ObserveProbe(domain.ProbeResult{Integration: "sendgrid", Success: true, LatencyMS: 80})

	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("stripe", "success")); got != 1 {
		t.Fatalf("stripe success = %v", got)
	}
	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("stripe", domain.ReasonTimeout)); got != 1 {
		t.Fatalf("stripe timeout = %v", got)
	}
	if got := testutil.ToFloat64(m.IntegrationUp.WithLabelValues("stripe")); got != 0 {
		t.Fatalf("stripe up = %v", got)
	}
	if got := testutil.ToFloat64(m.IntegrationUp.WithLabelValues("sendgrid")); got != 1 {
		t.Fatalf("sendgrid up = %v", got)
	}
}

func TestObserveProbeEmptyReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveProbe(domain.ProbeResult{Integration: "x"})
	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("x", domain.ReasonUnexpectedError)); got != 1 {
		t.Fatalf("fallback outcome = %v", got)
	}
}
