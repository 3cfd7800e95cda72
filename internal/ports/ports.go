package ports

import (
	"context"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

// CredentialStore resolves auth material for an integration. A missing
// integration is not an error: the store returns an empty map and the caller
// decides whether auth was required.
type CredentialStore interface {
	Resolve(ctx context.Context, integration string) (map[string]string, error)
}

type Registry interface {
	Get(name string) (domain.IntegrationDescriptor, bool)
	List() []domain.IntegrationDescriptor
}

type Prober interface {
	Probe(ctx context.Context, d domain.IntegrationDescriptor) domain.ProbeResult
	CheckAll(ctx context.Context, ds []domain.IntegrationDescriptor) []domain.ProbeResult
}

// StatsRepository serializes updates per integration. Record reports whether
// the integration's health status flipped with this result.
type StatsRepository interface {
	Record(ctx context.Context, result domain.ProbeResult) (domain.IntegrationStats, bool, error)
	Snapshot(ctx context.Context, integration string) (domain.IntegrationStats, error)
	SnapshotAll(ctx context.Context) ([]domain.IntegrationStats, error)
	Global(ctx context.Context) (domain.GlobalStats, error)
}

type ResultRepository interface {
	Add(ctx context.Context, result domain.ProbeResult) error
	Recent(ctx context.Context, integration string, limit int) ([]domain.ProbeResult, error)
	Since(ctx context.Context, cutoff time.Time) ([]domain.ProbeResult, error)
}

// DashboardCache is a read-through TTL cache. Concurrent misses on the same
// key may both compute; compute functions must be idempotent.
type DashboardCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, error)
	Clear(ctx context.Context) error
}

type EventPublisher interface {
	PublishHealthChange(ctx context.Context, evt domain.HealthChangeEvent) error
	Close() error
}

type MetricsRecorder interface {
	ObserveProbe(result domain.ProbeResult)
}

type AuditRepository interface {
	Append(ctx context.Context, row domain.AuditLog) error
	Recent(ctx context.Context, limit int) ([]domain.AuditLog, error)
}
