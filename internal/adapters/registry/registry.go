package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

// Registry holds the immutable integration catalog. Built-in descriptors can
// be overridden or extended from a YAML file at startup; after New returns the
// set never changes.
type Registry struct {
	byName map[string]domain.IntegrationDescriptor
	names  []string
}

type catalogFile struct {
	Integrations []domain.IntegrationDescriptor `yaml:"integrations"`
}

func New(overlayPath string) (*Registry, error) {
	byName := map[string]domain.IntegrationDescriptor{}
	for _, d := range builtinCatalog() {
		d = domain.NormalizeDescriptor(d)
		byName[d.Name] = d
	}

	if overlayPath != "" {
		raw, err := os.ReadFile(overlayPath)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", overlayPath, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", overlayPath, err)
		}
		for _, d := range file.Integrations {
			d = domain.NormalizeDescriptor(d)
			if err := domain.ValidateDescriptor(d); err != nil {
				return nil, fmt.Errorf("catalog entry %q: %w", d.Name, err)
			}
			byName[d.Name] = d
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{byName: byName, names: names}, nil
}

func (r *Registry) Get(name string) (domain.IntegrationDescriptor, bool) {
	d, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

func (r *Registry) List() []domain.IntegrationDescriptor {
	out := make([]domain.IntegrationDescriptor, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name])
	}
	return out
}

// builtinCatalog covers the integrations every deployment monitors. The YAML
// overlay handles tenant-specific additions and endpoint overrides.
func builtinCatalog() []domain.IntegrationDescriptor {
	return []domain.IntegrationDescriptor{
		{
			Name:        "anthropic",
			DisplayName: "Anthropic",
			Category:    "llm",
			Enabled:     true,
			Check: domain.CheckEndpoint{
				URL:            "https://api.anthropic.com/v1/models",
				ExpectedStatus: []int{200},
				Headers:        map[string]string{"anthropic-version": "2023-06-01"},
				Auth:           domain.AuthDescriptor{Type: domain.AuthAPIKeyHeader, HeaderName: "x-api-key"},
			},
		},
		{
			Name:        "azure-openai",
			DisplayName: "Azure OpenAI",
			Category:    "llm",
			Enabled:     true,
			Check: domain.CheckEndpoint{
				URL:            "https://{resource}.openai.azure.com/openai/models?api-version=2024-02-01",
				ExpectedStatus: []int{200},
				Auth:           domain.AuthDescriptor{Type: domain.AuthAPIKeyHeader, HeaderName: "api-key"},
			},
		},
		{
			Name:        "cohere",
			DisplayName: "Cohere",
			Category:    "llm",
			Enabled:     true,
			Check: domain.CheckEndpoint{
				URL:            "https://api.cohere.com/v1/models",
				ExpectedStatus: []int{200},
				Auth:           domain.AuthDescriptor{Type: domain.AuthBearer, TokenField: "api_key"},
			},
		},
		{
			Name:        "bedrock",
			DisplayName: "AWS Bedrock",
			Category:    "llm",
			Enabled:     true,
			Check: domain.CheckEndpoint{
				URL:            "https://bedrock.{region}.amazonaws.com/foundation-models",
				ExpectedStatus: []int{200},
				URLDefaults:    map[string]string{"region": "us-east-1"},
				Auth:           domain.AuthDescriptor{Type: domain.AuthAWSSigV4},
			},
		},
		{
			Name:        "stripe",
			DisplayName: "Stripe",
			Category:    "payments",
			Enabled:     true,
			Check: domain.CheckEndpoint{
				URL:            "https://api.stripe.com/v1/balance",
				ExpectedStatus: []int{200},
				Auth:           domain.AuthDescriptor{Type: domain.AuthBearer, TokenField: "secret_key"},
			},
		},
		{
			Name:        "sendgrid",
			DisplayName: "SendGrid",
			Category:    "messaging",
			Enabled:     true,
			Check: domain.CheckEndpoint{
				URL:            "https://api.sendgrid.com/v3/user/account",
				ExpectedStatus: []int{200},
				Auth:           domain.AuthDescriptor{Type: domain.AuthBearer, TokenField: "api_key"},
			},
		},
		{
			Name:        "google-ads",
			DisplayName: "Google Ads",
			Category:    "advertising",
			Enabled:     true,
			Check: domain.CheckEndpoint{
				URL:            "https://googleads.googleapis.com/v17/customers:listAccessibleCustomers",
				ExpectedStatus: []int{200},
				Auth:           domain.AuthDescriptor{Type: domain.AuthOAuth2, TokenField: "access_token"},
			},
		},
	}
}
