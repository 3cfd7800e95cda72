package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/ports"
)

const (
	maxBodyBytes = 1 << 20

	defaultTimeout         = 10 * time.Second
	defaultMaxConns        = 100
	defaultMaxConnsPerHost = 30
)

var capturedHeaders = []string{"X-Request-Id", "Retry-After", "Server"}

type Config struct {
	Timeout         time.Duration
	MaxConns        int
	MaxConnsPerHost int
}

// HTTPProber executes health-check requests against a shared pooled client.
// It never propagates an error to the caller: every outcome, including
// panics inside a probe, becomes a classified ProbeResult.
type HTTPProber struct {
	client     *http.Client
	creds      ports.CredentialStore
	validators map[string]Validator
	fallback   Validator
	timeout    time.Duration
	nowFn      func() time.Time
}

func NewHTTPProber(creds ports.CredentialStore, cfg Config) *HTTPProber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = defaultMaxConns
	}
	if cfg.MaxConnsPerHost <= 0 {
		cfg.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConns,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPProber{
		client:     &http.Client{Transport: transport},
		creds:      creds,
		validators: NewValidators(),
		fallback:   DefaultValidator(),
		timeout:    cfg.Timeout,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *HTTPProber) Probe(ctx context.Context, d domain.IntegrationDescriptor) (result domain.ProbeResult) {
	start := p.nowFn()
	defer func() {
		if rec := recover(); rec != nil {
			result = p.failed(d, start, domain.ReasonUnexpectedError, fmt.Sprintf("probe panic: %v", rec))
		}
	}()

	if !d.HasCheck() {
		return p.failed(d, start, domain.ReasonNotConfigured, "no health-check endpoint configured")
	}

	creds, err := p.creds.Resolve(ctx, d.Name)
	if err != nil {
		// Secret store outage degrades to an unauthenticated probe.
		creds = nil
	}

	req := BuildRequest(d, creds, start)
	probeCtx, cancel := context.WithTimeout(ctx, d.Timeout(p.timeout))
	defer cancel()

	var payload io.Reader
	if len(req.Body) > 0 {
		payload = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(probeCtx, req.Method, req.URL, payload)
	if err != nil {
		return p.failed(d, start, domain.ReasonUnexpectedError, fmt.Sprintf("build request: %v", err))
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		reason, msg := classifyTransportError(ctx, err)
		return p.failed(d, start, reason, msg)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	contentType := resp.Header.Get("Content-Type")

	result = domain.ProbeResult{
		Integration: d.Name,
		StatusCode:  resp.StatusCode,
		LatencyMS:   latencyMS(start, p.nowFn()),
		ContentType: contentType,
		Headers:     captureHeaders(resp.Header),
		CheckedAt:   start,
	}

	if !statusExpected(resp.StatusCode, d.Check.ExpectedStatus) {
		result.Reason = domain.ReasonUnexpectedStatus
		result.Error = fmt.Sprintf("status %d not in expected set %v", resp.StatusCode, d.Check.ExpectedStatus)
		return result
	}
	if err := p.validatorFor(d.Name).Validate(resp.StatusCode, contentType, body); err != nil {
		result.Reason = domain.ReasonContentValidation
		result.Error = err.Error()
		return result
	}
	result.Success = true
	return result
}

// CheckAll fans out one probe per descriptor and waits for all of them. One
// integration's failure or panic never cancels sibling probes; the slice
// always holds exactly one result per descriptor, in input order.
func (p *HTTPProber) CheckAll(ctx context.Context, ds []domain.IntegrationDescriptor) []domain.ProbeResult {
	results := make([]domain.ProbeResult, len(ds))
	var wg sync.WaitGroup
	for i, d := range ds {
		wg.Add(1)
		go func(idx int, d domain.IntegrationDescriptor) {
			defer wg.Done()
			results[idx] = p.Probe(ctx, d)
		}(i, d)
	}
	wg.Wait()
	return results
}

func (p *HTTPProber) validatorFor(name string) Validator {
	if v, ok := p.validators[name]; ok {
		return v
	}
	return p.fallback
}

func (p *HTTPProber) failed(d domain.IntegrationDescriptor, start time.Time, reason, msg string) domain.ProbeResult {
	return domain.ProbeResult{
		Integration: d.Name,
		LatencyMS:   latencyMS(start, p.nowFn()),
		Reason:      reason,
		Error:       msg,
		CheckedAt:   start,
	}
}

func classifyTransportError(parent context.Context, err error) (string, string) {
	if parent.Err() != nil && errors.Is(parent.Err(), context.Canceled) {
		return domain.ReasonCanceled, "probe canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout, "probe timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ReasonTimeout, "probe timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.ReasonConnectionError, opErr.Error()
	}
	if errors.Is(err, io.EOF) {
		return domain.ReasonConnectionError, "connection closed"
	}
	return domain.ReasonConnectionError, err.Error()
}

func statusExpected(code int, expected []int) bool {
	for _, v := range expected {
		if v == code {
			return true
		}
	}
	return false
}

func captureHeaders(h http.Header) map[string]string {
	out := map[string]string{}
	for _, name := range capturedHeaders {
		if value := h.Get(name); value != "" {
			out[name] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func latencyMS(start, end time.Time) float64 {
	return float64(end.Sub(start).Microseconds()) / 1000
}
