package secrets

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const credentialKeyPrefix = "integrations:credentials:"

// Redis resolves credentials from a hash per integration. A missing hash is
// an unconfigured integration, not an error.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Resolve(ctx context.Context, integration string) (map[string]string, error) {
	key := credentialKeyPrefix + strings.ToLower(strings.TrimSpace(integration))
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("resolve credentials for %s: %w", integration, err)
	}
	return fields, nil
}
