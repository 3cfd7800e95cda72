package secrets

import (
	"context"
	"strings"
	"sync"
)

// Static serves credentials loaded at startup, typically from environment
// variables or a config file. Safe for concurrent reads and updates.
type Static struct {
	mu    sync.RWMutex
	creds map[string]map[string]string
}

func NewStatic(creds map[string]map[string]string) *Static {
	normalized := make(map[string]map[string]string, len(creds))
	for name, fields := range creds {
		normalized[strings.ToLower(strings.TrimSpace(name))] = fields
	}
	return &Static{creds: normalized}
}

func (s *Static) Resolve(_ context.Context, integration string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.creds[strings.ToLower(strings.TrimSpace(integration))]
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

func (s *Static) Set(integration string, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[strings.ToLower(strings.TrimSpace(integration))] = fields
}
