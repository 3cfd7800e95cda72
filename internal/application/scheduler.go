package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

type monitor struct {
	cancel    context.CancelFunc
	interval  time.Duration
	startedAt time.Time
	done      chan struct{}
}

// StartContinuous launches a per-integration monitor loop. Starting an
// already-monitored integration replaces its loop with the new interval.
func (s *Service) StartContinuous(ctx context.Context, actor Actor, name string, interval time.Duration) (domain.MonitorStatus, error) {
	d, ok := s.reg.Get(name)
	if !ok {
		return domain.MonitorStatus{}, fmt.Errorf("integration %q: %w", name, domain.ErrNotFound)
	}
	if interval <= 0 {
		interval = s.cfg.MonitorInterval
	}
	if interval < time.Second {
		return domain.MonitorStatus{}, fmt.Errorf("interval below 1s: %w", domain.ErrInvalidInput)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m := &monitor{
		cancel:    cancel,
		interval:  interval,
		startedAt: s.nowFn(),
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	if prev, exists := s.monitors[d.Name]; exists {
		prev.cancel()
	}
	s.monitors[d.Name] = m
	s.mu.Unlock()

	go s.runMonitor(loopCtx, d, m)

	s.audit(ctx, actor, "monitor.start", d.Name)
	s.logger.Printf("monitor started for %s every %s", d.Name, interval)
	return domain.MonitorStatus{
		Integration:     d.Name,
		IntervalSeconds: int(interval.Seconds()),
		StartedAt:       m.startedAt,
	}, nil
}

// runMonitor probes immediately, then once per interval until canceled. A bad
// tick is recorded like any other failed probe and the loop keeps going.
func (s *Service) runMonitor(ctx context.Context, d domain.IntegrationDescriptor, m *monitor) {
	defer close(m.done)
	for {
		result := s.prober.Probe(ctx, d)
		if result.Reason != domain.ReasonCanceled {
			s.record(ctx, result)
			if !result.Success {
				s.logger.Printf("monitor tick failed for %s: %s (%s)", d.Name, result.Reason, result.Error)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.interval):
		}
	}
}

func (s *Service) StopContinuous(ctx context.Context, actor Actor, name string) error {
	s.mu.Lock()
	m, ok := s.monitors[name]
	if ok {
		delete(s.monitors, name)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("monitor for %q: %w", name, domain.ErrNotFound)
	}
	m.cancel()
	<-m.done
	s.audit(ctx, actor, "monitor.stop", name)
	s.logger.Printf("monitor stopped for %s", name)
	return nil
}

// StopAll cancels every monitor and waits for the loops to exit. Used during
// shutdown.
func (s *Service) StopAll() {
	s.mu.Lock()
	monitors := s.monitors
	s.monitors = map[string]*monitor{}
	s.mu.Unlock()
	for _, m := range monitors {
		m.cancel()
	}
	for _, m := range monitors {
		<-m.done
	}
}

func (s *Service) ActiveMonitors() []domain.MonitorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.MonitorStatus, 0, len(s.monitors))
	for name, m := range s.monitors {
		out = append(out, domain.MonitorStatus{
			Integration:     name,
			IntervalSeconds: int(m.interval.Seconds()),
			StartedAt:       m.startedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Integration < out[j].Integration })
	return out
}
