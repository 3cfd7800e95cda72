package events

import (
	"context"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

// Noop is used when no broker is configured. Health transitions are still
// logged and exposed as metrics; they just do not leave the process.
type Noop struct{}

func (Noop) PublishHealthChange(context.Context, domain.HealthChangeEvent) error { return nil }

func (Noop) Close() error { return nil }
