package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

type staticCreds map[string]map[string]string

func (s staticCreds) Resolve(_ context.Context, name string) (map[string]string, error) {
	return s[name], nil
}

func descriptorFor(name, url string) domain.IntegrationDescriptor {
	return domain.NormalizeDescriptor(domain.IntegrationDescriptor{
		Name:    name,
		Enabled: true,
		Check:   domain.CheckEndpoint{URL: url},
	})
}

func TestProbeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := NewHTTPProber(staticCreds{}, Config{})
	result := p.Probe(context.Background(), descriptorFor("example", srv.URL))
	if !result.Success {
		t.Fatalf("probe failed: %s %s", result.Reason, result.Error)
	}
	if result.StatusCode != 200 {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if result.LatencyMS < 0 {
		t.Fatalf("latency = %v", result.LatencyMS)
	}
}

func TestProbeNotConfigured(t *testing.T) {
	p := NewHTTPProber(staticCreds{}, Config{})
	result := p.Probe(context.Background(), domain.NormalizeDescriptor(domain.IntegrationDescriptor{Name: "bare"}))
	if result.Success || result.Reason != domain.ReasonNotConfigured {
		t.Fatalf("result = %+v", result)
	}
}

func TestProbeUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	p := NewHTTPProber(staticCreds{}, Config{})
	result := p.Probe(context.Background(), descriptorFor("example", srv.URL))
	if result.Success || result.Reason != domain.ReasonUnexpectedStatus {
		t.Fatalf("result = %+v", result)
	}
	if result.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d", result.StatusCode)
	}
}

func TestProbeContentValidationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"expired key"}`))
	}))
	defer srv.Close()

	p := NewHTTPProber(staticCreds{}, Config{})
	result := p.Probe(context.Background(), descriptorFor("example", srv.URL))
	if result.Success || result.Reason != domain.ReasonContentValidation {
		t.Fatalf("result = %+v", result)
	}
}

func TestProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	d := descriptorFor("slow", srv.URL)
	d.Check.TimeoutSeconds = 0
	p := NewHTTPProber(staticCreds{}, Config{Timeout: 50 * time.Millisecond})
	result := p.Probe(context.Background(), d)
	if result.Success || result.Reason != domain.ReasonTimeout {
		t.Fatalf("result = %+v", result)
	}
}

func TestProbeLatencyReflectsElapsedTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	const timeout = 100 * time.Millisecond
	before := time.Now().UTC()
	p := NewHTTPProber(staticCreds{}, Config{Timeout: timeout})
	result := p.Probe(context.Background(), descriptorFor("slow", srv.URL))
	after := time.Now().UTC()

	if result.Reason != domain.ReasonTimeout {
		t.Fatalf("result = %+v", result)
	}
	// A timed-out probe's latency tracks the configured timeout, not zero.
	if result.LatencyMS < 80 || result.LatencyMS > 1000 {
		t.Fatalf("latency = %vms, want roughly %v", result.LatencyMS, timeout)
	}
	if result.CheckedAt.Before(before) || result.CheckedAt.After(after) {
		t.Fatalf("checked_at = %v, want between %v and %v", result.CheckedAt, before, after)
	}
}

func TestProbeClockAdvancesBetweenProbes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewHTTPProber(staticCreds{}, Config{})
	first := p.Probe(context.Background(), descriptorFor("example", srv.URL))
	time.Sleep(20 * time.Millisecond)
	second := p.Probe(context.Background(), descriptorFor("example", srv.URL))
	if !second.CheckedAt.After(first.CheckedAt) {
		t.Fatalf("checked_at frozen: first=%v second=%v", first.CheckedAt, second.CheckedAt)
	}
}

func TestProbeConnectionError(t *testing.T) {
	p := NewHTTPProber(staticCreds{}, Config{Timeout: time.Second})
	result := p.Probe(context.Background(), descriptorFor("down", "http://127.0.0.1:1"))
	if result.Success || result.Reason != domain.ReasonConnectionError {
		t.Fatalf("result = %+v", result)
	}
}

func TestProbeCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	p := NewHTTPProber(staticCreds{}, Config{Timeout: 5 * time.Second})
	result := p.Probe(ctx, descriptorFor("example", srv.URL))
	if result.Success || result.Reason != domain.ReasonCanceled {
		t.Fatalf("result = %+v", result)
	}
}

func TestProbeSendsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	d := descriptorFor("example", srv.URL)
	d.Check.Auth = domain.NormalizeAuth(domain.AuthDescriptor{Type: domain.AuthBearer})
	creds := staticCreds{"example": {"token": "tok-9"}}
	p := NewHTTPProber(creds, Config{})
	if result := p.Probe(context.Background(), d); !result.Success {
		t.Fatalf("probe failed: %+v", result)
	}
	if gotAuth != "Bearer tok-9" {
		t.Fatalf("authorization = %q", gotAuth)
	}
}

func TestCheckAllIsolation(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer healthy.Close()

	ds := []domain.IntegrationDescriptor{
		descriptorFor("up-0", healthy.URL),
		descriptorFor("down", "http://127.0.0.1:1"),
		descriptorFor("up-1", healthy.URL),
		domain.NormalizeDescriptor(domain.IntegrationDescriptor{Name: "unconfigured"}),
		descriptorFor("up-2", healthy.URL),
	}
	p := NewHTTPProber(staticCreds{}, Config{Timeout: 2 * time.Second})
	results := p.CheckAll(context.Background(), ds)
	if len(results) != len(ds) {
		t.Fatalf("got %d results", len(results))
	}
	for i, result := range results {
		if result.Integration != ds[i].Name {
			t.Fatalf("result %d is %s, want %s", i, result.Integration, ds[i].Name)
		}
	}
	for _, idx := range []int{0, 2, 4} {
		if !results[idx].Success {
			t.Fatalf("healthy probe %d failed: %+v", idx, results[idx])
		}
	}
	if results[1].Reason != domain.ReasonConnectionError {
		t.Fatalf("down probe reason = %s", results[1].Reason)
	}
	if results[3].Reason != domain.ReasonNotConfigured {
		t.Fatalf("unconfigured probe reason = %s", results[3].Reason)
	}
}
