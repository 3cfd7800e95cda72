package application

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/ports"
)

// Service owns all health-check use cases: on-demand probes, statistics,
// dashboard reads and the continuous monitors.
type Service struct {
	cfg    Config
	reg    ports.Registry
	prober ports.Prober
	stats  ports.StatsRepository
	recent ports.ResultRepository
	cache  ports.DashboardCache
	events ports.EventPublisher
	meter  ports.MetricsRecorder
	audits ports.AuditRepository
	logger *log.Logger
	nowFn  func() time.Time

	mu       sync.Mutex
	monitors map[string]*monitor
}

func NewService(cfg Config, deps Dependencies) *Service {
	if deps.NowFn == nil {
		deps.NowFn = func() time.Time { return time.Now().UTC() }
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Service{
		cfg:      cfg.withDefaults(),
		reg:      deps.Registry,
		prober:   deps.Prober,
		stats:    deps.Stats,
		recent:   deps.Results,
		cache:    deps.Cache,
		events:   deps.Events,
		meter:    deps.Metrics,
		audits:   deps.Audits,
		logger:   deps.Logger,
		nowFn:    deps.NowFn,
		monitors: map[string]*monitor{},
	}
}

// CheckIntegration probes one integration by name and records the outcome.
func (s *Service) CheckIntegration(ctx context.Context, actor Actor, name string) (domain.ProbeResult, error) {
	d, ok := s.reg.Get(name)
	if !ok {
		return domain.ProbeResult{}, fmt.Errorf("integration %q: %w", name, domain.ErrNotFound)
	}
	result := s.prober.Probe(ctx, d)
	s.record(ctx, result)
	s.audit(ctx, actor, "check.manual", d.Name)
	return result, nil
}

// CheckMany probes the named integrations concurrently; an empty list means
// every enabled integration in the registry. Unknown names fail the call
// before any probe runs.
func (s *Service) CheckMany(ctx context.Context, actor Actor, names []string) ([]domain.ProbeResult, error) {
	var ds []domain.IntegrationDescriptor
	if len(names) == 0 {
		for _, d := range s.reg.List() {
			if d.Enabled {
				ds = append(ds, d)
			}
		}
	} else {
		for _, name := range names {
			d, ok := s.reg.Get(name)
			if !ok {
				return nil, fmt.Errorf("integration %q: %w", name, domain.ErrNotFound)
			}
			ds = append(ds, d)
		}
	}
	results := s.prober.CheckAll(ctx, ds)
	for _, result := range results {
		s.record(ctx, result)
	}
	target := "all"
	if len(names) > 0 {
		target = strings.Join(names, ",")
	}
	s.audit(ctx, actor, "check.batch", target)
	return results, nil
}

// record folds one probe outcome into the aggregate state. Cancellation is an
// operator action, not an integration failure, so canceled probes are dropped.
func (s *Service) record(ctx context.Context, result domain.ProbeResult) {
	if result.Reason == domain.ReasonCanceled {
		return
	}
	if s.meter != nil {
		s.meter.ObserveProbe(result)
	}
	if err := s.recent.Add(ctx, result); err != nil {
		s.logger.Printf("store probe result for %s: %v", result.Integration, err)
	}
	stats, flipped, err := s.stats.Record(ctx, result)
	if err != nil {
		s.logger.Printf("record stats for %s: %v", result.Integration, err)
		return
	}
	if !flipped {
		return
	}
	previous := domain.HealthUnknown
	if stats.TotalChecks > 1 {
		if stats.LastStatus == domain.HealthHealthy {
			previous = domain.HealthUnhealthy
		} else {
			previous = domain.HealthHealthy
		}
	}
	evt := domain.HealthChangeEvent{
		EventID:        uuid.NewString(),
		Integration:    result.Integration,
		PreviousStatus: previous,
		Status:         stats.LastStatus,
		StatusCode:     result.StatusCode,
		Reason:         result.Reason,
		OccurredAt:     result.CheckedAt,
	}
	s.logger.Printf("integration %s transitioned %s -> %s (reason=%s)",
		evt.Integration, evt.PreviousStatus, evt.Status, evt.Reason)
	if s.events != nil {
		if err := s.events.PublishHealthChange(ctx, evt); err != nil {
			s.logger.Printf("publish health change for %s: %v", result.Integration, err)
		}
	}
}

// ClearDashboardCache drops every cached dashboard view so the next read
// recomputes from live aggregates.
func (s *Service) ClearDashboardCache(ctx context.Context, actor Actor) error {
	if err := s.cache.Clear(ctx); err != nil {
		return err
	}
	s.audit(ctx, actor, "dashboard.cache.clear", "")
	return nil
}

func (s *Service) AuditTrail(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return s.audits.Recent(ctx, limit)
}

func (s *Service) audit(ctx context.Context, actor Actor, action, target string) {
	if s.audits == nil {
		return
	}
	row := domain.AuditLog{
		AuditID:    uuid.NewString(),
		ActorID:    actor.ID,
		ActionType: action,
		Target:     target,
		ActionAt:   s.nowFn(),
		IPAddress:  actor.IP,
	}
	if err := s.audits.Append(ctx, row); err != nil {
		s.logger.Printf("append audit %s: %v", action, err)
	}
}
