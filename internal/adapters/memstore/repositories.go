package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

const (
	recentResultsCap = 50
	auditCap         = 1000
)

type Repositories struct {
	Stats   *StatsRepository
	Results *ResultRepository
	Audits  *AuditRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Stats:   &StatsRepository{rows: map[string]*statsEntry{}},
		Results: &ResultRepository{rows: map[string][]domain.ProbeResult{}},
		Audits:  &AuditRepository{},
	}
}

type statsEntry struct {
	mu    sync.Mutex
	stats domain.IntegrationStats
}

// StatsRepository serializes updates with one lock per integration so
// parallel probes of different integrations never contend.
type StatsRepository struct {
	mu   sync.RWMutex
	rows map[string]*statsEntry
}

func (r *StatsRepository) entry(integration string) *statsEntry {
	r.mu.RLock()
	e, ok := r.rows[integration]
	r.mu.RUnlock()
	if ok {
		return e
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.rows[integration]; ok {
		return e
	}
	e = &statsEntry{stats: domain.IntegrationStats{Integration: integration, LastStatus: domain.HealthUnknown}}
	r.rows[integration] = e
	return e
}

func (r *StatsRepository) Record(_ context.Context, result domain.ProbeResult) (domain.IntegrationStats, bool, error) {
	name := strings.TrimSpace(result.Integration)
	if name == "" {
		return domain.IntegrationStats{}, false, domain.ErrInvalidInput
	}
	e := r.entry(name)
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &e.stats
	previous := s.LastStatus
	s.TotalChecks++
	if result.Success {
		s.SuccessfulChecks++
		s.ConsecutiveFailures = 0
		s.LastError = ""
	} else {
		s.FailedChecks++
		s.ConsecutiveFailures++
		s.LastError = result.Error
	}
	n := float64(s.TotalChecks)
	s.AverageLatencyMS = (s.AverageLatencyMS*(n-1) + result.LatencyMS) / n
	s.LastCheckedAt = result.CheckedAt
	s.LastStatus = result.Status()

	return *s, previous != s.LastStatus, nil
}

func (r *StatsRepository) Snapshot(_ context.Context, integration string) (domain.IntegrationStats, error) {
	r.mu.RLock()
	e, ok := r.rows[strings.TrimSpace(integration)]
	r.mu.RUnlock()
	if !ok {
		return domain.IntegrationStats{Integration: integration, LastStatus: domain.HealthUnknown}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats, nil
}

func (r *StatsRepository) SnapshotAll(_ context.Context) ([]domain.IntegrationStats, error) {
	r.mu.RLock()
	entries := make([]*statsEntry, 0, len(r.rows))
	for _, e := range r.rows {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]domain.IntegrationStats, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.stats)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Integration < out[j].Integration })
	return out, nil
}

func (r *StatsRepository) Global(ctx context.Context) (domain.GlobalStats, error) {
	rows, err := r.SnapshotAll(ctx)
	if err != nil {
		return domain.GlobalStats{}, err
	}
	g := domain.GlobalStats{Integrations: len(rows), GeneratedAt: time.Now().UTC()}
	var latencySum float64
	for _, s := range rows {
		g.TotalChecks += s.TotalChecks
		g.SuccessfulChecks += s.SuccessfulChecks
		g.FailedChecks += s.FailedChecks
		latencySum += s.AverageLatencyMS * float64(s.TotalChecks)
	}
	if g.TotalChecks > 0 {
		g.SuccessRate = float64(g.SuccessfulChecks) / float64(g.TotalChecks)
		g.AverageLatencyMS = latencySum / float64(g.TotalChecks)
	}
	return g, nil
}

type ResultRepository struct {
	mu   sync.Mutex
	rows map[string][]domain.ProbeResult
}

func (r *ResultRepository) Add(_ context.Context, result domain.ProbeResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.rows[result.Integration], result)
	if len(list) > recentResultsCap {
		list = list[len(list)-recentResultsCap:]
	}
	r.rows[result.Integration] = list
	return nil
}

func (r *ResultRepository) Recent(_ context.Context, integration string, limit int) ([]domain.ProbeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > recentResultsCap {
		limit = 10
	}
	list := r.rows[strings.TrimSpace(integration)]
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]domain.ProbeResult, len(list))
	copy(out, list)
	// newest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *ResultRepository) Since(_ context.Context, cutoff time.Time) ([]domain.ProbeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProbeResult
	for _, list := range r.rows {
		for _, result := range list {
			if !result.CheckedAt.Before(cutoff) {
				out = append(out, result)
			}
		}
	}
	return out, nil
}

type AuditRepository struct {
	mu   sync.Mutex
	rows []domain.AuditLog
}

func (r *AuditRepository) Append(_ context.Context, row domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	if len(r.rows) > auditCap {
		r.rows = r.rows[len(r.rows)-auditCap:]
	}
	return nil
}

func (r *AuditRepository) Recent(_ context.Context, limit int) ([]domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > auditCap {
		limit = 100
	}
	list := r.rows
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]domain.AuditLog, len(list))
	copy(out, list)
	return out, nil
}
