package application

import (
	"log"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/ports"
)

type Config struct {
	ProbeTimeout          time.Duration
	CacheTTL              time.Duration
	MonitorInterval       time.Duration
	AlertSuccessThreshold float64
	RealTimeWindow        time.Duration
}

func (c Config) withDefaults() Config {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 30 * time.Second
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = 60 * time.Second
	}
	if c.AlertSuccessThreshold <= 0 || c.AlertSuccessThreshold > 1 {
		c.AlertSuccessThreshold = 0.9
	}
	if c.RealTimeWindow <= 0 {
		c.RealTimeWindow = 5 * time.Minute
	}
	return c
}

// Actor identifies who triggered a state-changing operation, for the audit
// trail. Zero value means an unauthenticated internal caller.
type Actor struct {
	ID   string
	Role string
	IP   string
}

type Dependencies struct {
	Registry ports.Registry
	Prober   ports.Prober
	Stats    ports.StatsRepository
	Results  ports.ResultRepository
	Cache    ports.DashboardCache
	Events   ports.EventPublisher
	Metrics  ports.MetricsRecorder
	Audits   ports.AuditRepository
	Logger   *log.Logger
	NowFn    func() time.Time
}
