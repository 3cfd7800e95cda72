package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

var knownPeriods = map[string]bool{"1h": true, "24h": true, "7d": true, "30d": true}

func normalizePeriod(raw, fallback string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if knownPeriods[raw] {
		return raw
	}
	return fallback
}

// Dashboard reads go through the TTL cache; each view has its own key so
// clearing and expiry are independent per view.

func (s *Service) Overview(ctx context.Context) (any, error) {
	return s.cache.GetOrCompute(ctx, "overview", s.cfg.CacheTTL, func(ctx context.Context) (any, error) {
		return s.buildOverview(ctx)
	})
}

func (s *Service) buildOverview(ctx context.Context) (domain.OverviewReport, error) {
	report := domain.OverviewReport{GeneratedAt: s.nowFn()}
	for _, d := range s.reg.List() {
		stats, err := s.stats.Snapshot(ctx, d.Name)
		if err != nil {
			return domain.OverviewReport{}, err
		}
		item := domain.OverviewIntegration{
			Name:             d.Name,
			DisplayName:      d.DisplayName,
			Category:         d.Category,
			Status:           stats.LastStatus,
			SuccessRate:      stats.SuccessRate(),
			TotalChecks:      stats.TotalChecks,
			AverageLatencyMS: stats.AverageLatencyMS,
			LastError:        stats.LastError,
		}
		if !stats.LastCheckedAt.IsZero() {
			at := stats.LastCheckedAt
			item.LastCheckedAt = &at
		}
		switch stats.LastStatus {
		case domain.HealthHealthy:
			report.Healthy++
		case domain.HealthUnhealthy:
			report.Unhealthy++
		default:
			report.Unknown++
		}
		report.Integrations = append(report.Integrations, item)
	}
	report.TotalIntegrations = len(report.Integrations)
	global, err := s.stats.Global(ctx)
	if err != nil {
		return domain.OverviewReport{}, err
	}
	report.GlobalSuccessRate = global.SuccessRate
	return report, nil
}

func (s *Service) IntegrationDetails(ctx context.Context, name string) (any, error) {
	if _, ok := s.reg.Get(name); !ok {
		return nil, fmt.Errorf("integration %q: %w", name, domain.ErrNotFound)
	}
	key := "integration:" + name
	return s.cache.GetOrCompute(ctx, key, s.cfg.CacheTTL, func(ctx context.Context) (any, error) {
		return s.buildDetails(ctx, name)
	})
}

func (s *Service) buildDetails(ctx context.Context, name string) (domain.IntegrationDetails, error) {
	d, _ := s.reg.Get(name)
	stats, err := s.stats.Snapshot(ctx, name)
	if err != nil {
		return domain.IntegrationDetails{}, err
	}
	recent, err := s.recent.Recent(ctx, name, 10)
	if err != nil {
		return domain.IntegrationDetails{}, err
	}
	details := domain.IntegrationDetails{
		Name:          d.Name,
		DisplayName:   d.DisplayName,
		Category:      d.Category,
		Endpoint:      d.Check.URL,
		AuthType:      d.Check.Auth.Type,
		Enabled:       d.Enabled,
		Stats:         stats,
		RecentResults: recent,
	}
	s.mu.Lock()
	if m, ok := s.monitors[name]; ok {
		details.Monitored = true
		details.IntervalSeconds = int(m.interval.Seconds())
	}
	s.mu.Unlock()
	return details, nil
}

func (s *Service) RealTime(ctx context.Context) (any, error) {
	return s.cache.GetOrCompute(ctx, "realtime", s.cfg.CacheTTL, func(ctx context.Context) (any, error) {
		return s.buildRealTime(ctx)
	})
}

func (s *Service) buildRealTime(ctx context.Context) (domain.RealTimeMetrics, error) {
	now := s.nowFn()
	window := s.cfg.RealTimeWindow
	results, err := s.recent.Since(ctx, now.Add(-window))
	if err != nil {
		return domain.RealTimeMetrics{}, err
	}
	m := domain.RealTimeMetrics{
		GeneratedAt:    now,
		ActiveMonitors: s.ActiveMonitors(),
		WindowSeconds:  int(window.Seconds()),
	}
	var latencySum float64
	for _, result := range results {
		m.ChecksInWindow++
		if !result.Success {
			m.FailuresInWindow++
		}
		latencySum += result.LatencyMS
	}
	if m.ChecksInWindow > 0 {
		m.AverageLatencyMS = latencySum / float64(m.ChecksInWindow)
	}
	return m, nil
}

// Performance and Costs accept a reporting period label (24h, 7d, 30d). The
// aggregator keeps lifetime counters, so the period scopes the report label
// and cache key, not the data window.
func (s *Service) Performance(ctx context.Context, period string) (any, error) {
	period = normalizePeriod(period, "24h")
	return s.cache.GetOrCompute(ctx, "performance:"+period, s.cfg.CacheTTL, func(ctx context.Context) (any, error) {
		return s.buildPerformance(ctx, period)
	})
}

func (s *Service) buildPerformance(ctx context.Context, period string) (domain.PerformanceReport, error) {
	rows, err := s.stats.SnapshotAll(ctx)
	if err != nil {
		return domain.PerformanceReport{}, err
	}
	report := domain.PerformanceReport{Period: period, GeneratedAt: s.nowFn()}
	for _, stats := range rows {
		if stats.TotalChecks == 0 {
			continue
		}
		category := "general"
		if d, ok := s.reg.Get(stats.Integration); ok {
			category = d.Category
		}
		report.Items = append(report.Items, domain.PerformanceItem{
			Integration:      stats.Integration,
			Category:         category,
			Checks:           stats.TotalChecks,
			SuccessRate:      stats.SuccessRate(),
			AverageLatencyMS: stats.AverageLatencyMS,
		})
	}
	// slowest first
	sort.Slice(report.Items, func(i, j int) bool {
		return report.Items[i].AverageLatencyMS > report.Items[j].AverageLatencyMS
	})
	return report, nil
}

// categoryUnitCosts are per-check estimates in USD. Real billing lives with
// the providers; this view only sizes relative probe spend.
var categoryUnitCosts = map[string]float64{
	"llm":         0.0004,
	"payments":    0.0001,
	"messaging":   0.0001,
	"advertising": 0.0002,
}

const defaultUnitCost = 0.0001

func (s *Service) Costs(ctx context.Context, period string) (any, error) {
	period = normalizePeriod(period, "30d")
	return s.cache.GetOrCompute(ctx, "costs:"+period, s.cfg.CacheTTL, func(ctx context.Context) (any, error) {
		return s.buildCosts(ctx, period)
	})
}

func (s *Service) buildCosts(ctx context.Context, period string) (domain.CostReport, error) {
	rows, err := s.stats.SnapshotAll(ctx)
	if err != nil {
		return domain.CostReport{}, err
	}
	report := domain.CostReport{
		Period:      period,
		GeneratedAt: s.nowFn(),
		Currency:    "USD",
		Estimated:   true,
	}
	for _, stats := range rows {
		if stats.TotalChecks == 0 {
			continue
		}
		category := "general"
		if d, ok := s.reg.Get(stats.Integration); ok {
			category = d.Category
		}
		unit, ok := categoryUnitCosts[category]
		if !ok {
			unit = defaultUnitCost
		}
		item := domain.CostItem{
			Integration: stats.Integration,
			Category:    category,
			Checks:      stats.TotalChecks,
			UnitCost:    unit,
			Estimate:    unit * float64(stats.TotalChecks),
		}
		report.TotalEstimate += item.Estimate
		report.Items = append(report.Items, item)
	}
	sort.Slice(report.Items, func(i, j int) bool {
		return report.Items[i].Estimate > report.Items[j].Estimate
	})
	return report, nil
}

func (s *Service) Alerts(ctx context.Context) (any, error) {
	return s.cache.GetOrCompute(ctx, "alerts", s.cfg.CacheTTL, func(ctx context.Context) (any, error) {
		return s.buildAlerts(ctx)
	})
}

func (s *Service) buildAlerts(ctx context.Context) (domain.AlertReport, error) {
	rows, err := s.stats.SnapshotAll(ctx)
	if err != nil {
		return domain.AlertReport{}, err
	}
	report := domain.AlertReport{GeneratedAt: s.nowFn(), Threshold: s.cfg.AlertSuccessThreshold}
	for _, stats := range rows {
		if stats.TotalChecks == 0 {
			continue
		}
		rate := stats.SuccessRate()
		if rate >= s.cfg.AlertSuccessThreshold && stats.ConsecutiveFailures < 3 {
			continue
		}
		severity := "warning"
		if stats.LastStatus == domain.HealthUnhealthy && stats.ConsecutiveFailures >= 3 {
			severity = "critical"
		}
		report.Alerts = append(report.Alerts, domain.HealthAlert{
			Integration:         stats.Integration,
			Severity:            severity,
			SuccessRate:         rate,
			ConsecutiveFailures: stats.ConsecutiveFailures,
			LastError:           stats.LastError,
			LastCheckedAt:       stats.LastCheckedAt,
		})
	}
	sort.Slice(report.Alerts, func(i, j int) bool {
		return report.Alerts[i].ConsecutiveFailures > report.Alerts[j].ConsecutiveFailures
	})
	return report, nil
}
