package domain

import (
	"strings"
	"time"
)

const (
	AuthNone         = "none"
	AuthBearer       = "bearer"
	AuthBasic        = "basic"
	AuthAPIKeyHeader = "api_key_header"
	AuthOAuth2       = "oauth2"
	AuthAWSSigV4     = "aws_sigv4"
)

const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthUnknown   = "unknown"
)

// Probe failure classifications. A ProbeResult carries exactly one of these
// when Success is false; an empty Reason means the probe succeeded.
const (
	ReasonNotConfigured     = "not_configured"
	ReasonTimeout           = "timeout"
	ReasonConnectionError   = "connection_error"
	ReasonUnexpectedStatus  = "unexpected_status"
	ReasonContentValidation = "content_validation_failed"
	ReasonUnexpectedError   = "unexpected_error"
	ReasonCanceled          = "canceled"
)

// AuthDescriptor names the credential fields a probe pulls from the
// credential store for one auth scheme. Field names default per scheme via
// NormalizeAuth so catalogs only set what deviates.
type AuthDescriptor struct {
	Type           string `json:"type" yaml:"type"`
	TokenField     string `json:"token_field,omitempty" yaml:"token_field"`
	UserField      string `json:"user_field,omitempty" yaml:"user_field"`
	PasswordField  string `json:"password_field,omitempty" yaml:"password_field"`
	HeaderName     string `json:"header_name,omitempty" yaml:"header_name"`
	KeyField       string `json:"key_field,omitempty" yaml:"key_field"`
	AccessKeyField string `json:"access_key_field,omitempty" yaml:"access_key_field"`
	SecretKeyField string `json:"secret_key_field,omitempty" yaml:"secret_key_field"`
	RegionField    string `json:"region_field,omitempty" yaml:"region_field"`
	ServiceField   string `json:"service_field,omitempty" yaml:"service_field"`
}

type CheckEndpoint struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers"`
	ExpectedStatus []int             `json:"expected_status" yaml:"expected_status"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	BodyTemplate   string            `json:"body_template,omitempty" yaml:"body_template"`
	URLDefaults    map[string]string `json:"url_defaults,omitempty" yaml:"url_defaults"`
	Auth           AuthDescriptor    `json:"auth" yaml:"auth"`
}

// IntegrationDescriptor is the static per-integration configuration. It is
// immutable once loaded into the registry.
type IntegrationDescriptor struct {
	Name        string        `json:"name" yaml:"name"`
	DisplayName string        `json:"display_name,omitempty" yaml:"display_name"`
	Category    string        `json:"category" yaml:"category"`
	Enabled     bool          `json:"enabled" yaml:"enabled"`
	Check       CheckEndpoint `json:"check" yaml:"check"`
}

func (d IntegrationDescriptor) HasCheck() bool {
	return strings.TrimSpace(d.Check.URL) != ""
}

func (d IntegrationDescriptor) Timeout(fallback time.Duration) time.Duration {
	if d.Check.TimeoutSeconds > 0 {
		return time.Duration(d.Check.TimeoutSeconds) * time.Second
	}
	return fallback
}

// ProbeResult is the outcome of one health-check cycle. Created once per
// probe and never mutated afterwards.
type ProbeResult struct {
	Integration string            `json:"integration"`
	Success     bool              `json:"success"`
	StatusCode  int               `json:"status_code,omitempty"`
	LatencyMS   float64           `json:"latency_ms"`
	Reason      string            `json:"reason,omitempty"`
	Error       string            `json:"error,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	CheckedAt   time.Time         `json:"checked_at"`
}

func (r ProbeResult) Status() string {
	if r.Success {
		return HealthHealthy
	}
	return HealthUnhealthy
}

// IntegrationStats holds the mutable per-integration counters owned by the
// statistics aggregator. TotalChecks == SuccessfulChecks + FailedChecks holds
// at all times.
type IntegrationStats struct {
	Integration         string    `json:"integration"`
	TotalChecks         int64     `json:"total_checks"`
	SuccessfulChecks    int64     `json:"successful_checks"`
	FailedChecks        int64     `json:"failed_checks"`
	ConsecutiveFailures int64     `json:"consecutive_failures"`
	AverageLatencyMS    float64   `json:"average_latency_ms"`
	LastCheckedAt       time.Time `json:"last_checked_at"`
	LastStatus          string    `json:"last_status"`
	LastError           string    `json:"last_error,omitempty"`
}

func (s IntegrationStats) SuccessRate() float64 {
	if s.TotalChecks == 0 {
		return 0
	}
	return float64(s.SuccessfulChecks) / float64(s.TotalChecks)
}

type GlobalStats struct {
	Integrations     int       `json:"integrations"`
	TotalChecks      int64     `json:"total_checks"`
	SuccessfulChecks int64     `json:"successful_checks"`
	FailedChecks     int64     `json:"failed_checks"`
	SuccessRate      float64   `json:"success_rate"`
	AverageLatencyMS float64   `json:"average_latency_ms"`
	GeneratedAt      time.Time `json:"generated_at"`
}

type HealthChangeEvent struct {
	EventID        string    `json:"event_id"`
	Integration    string    `json:"integration"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	StatusCode     int       `json:"status_code,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type AuditLog struct {
	AuditID    string    `json:"audit_id"`
	ActorID    string    `json:"actor_id"`
	ActionType string    `json:"action_type"`
	Target     string    `json:"target,omitempty"`
	ActionAt   time.Time `json:"action_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
}

// NormalizeAuth lowercases the scheme and fills per-scheme default credential
// field names.
func NormalizeAuth(a AuthDescriptor) AuthDescriptor {
	a.Type = strings.ToLower(strings.TrimSpace(a.Type))
	if a.Type == "" {
		a.Type = AuthNone
	}
	switch a.Type {
	case AuthBearer, AuthOAuth2:
		if a.TokenField == "" {
			a.TokenField = "token"
		}
	case AuthBasic:
		if a.UserField == "" {
			a.UserField = "username"
		}
		if a.PasswordField == "" {
			a.PasswordField = "password"
		}
	case AuthAPIKeyHeader:
		if a.HeaderName == "" {
			a.HeaderName = "X-Api-Key"
		}
		if a.KeyField == "" {
			a.KeyField = "api_key"
		}
	case AuthAWSSigV4:
		if a.AccessKeyField == "" {
			a.AccessKeyField = "access_key_id"
		}
		if a.SecretKeyField == "" {
			a.SecretKeyField = "secret_access_key"
		}
		if a.RegionField == "" {
			a.RegionField = "region"
		}
		if a.ServiceField == "" {
			a.ServiceField = "service"
		}
	}
	return a
}

func IsValidAuthType(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case AuthNone, AuthBearer, AuthBasic, AuthAPIKeyHeader, AuthOAuth2, AuthAWSSigV4:
		return true
	default:
		return false
	}
}

// NormalizeDescriptor fills endpoint defaults (GET, expected 200, normalized
// auth) so the prober never special-cases a half-filled catalog entry.
func NormalizeDescriptor(d IntegrationDescriptor) IntegrationDescriptor {
	d.Name = strings.ToLower(strings.TrimSpace(d.Name))
	d.Category = strings.ToLower(strings.TrimSpace(d.Category))
	if d.Category == "" {
		d.Category = "general"
	}
	if d.DisplayName == "" {
		d.DisplayName = d.Name
	}
	d.Check.Method = strings.ToUpper(strings.TrimSpace(d.Check.Method))
	if d.Check.Method == "" {
		d.Check.Method = "GET"
	}
	if len(d.Check.ExpectedStatus) == 0 {
		d.Check.ExpectedStatus = []int{200}
	}
	d.Check.Auth = NormalizeAuth(d.Check.Auth)
	return d
}

func ValidateDescriptor(d IntegrationDescriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrInvalidInput
	}
	if !IsValidAuthType(d.Check.Auth.Type) {
		return ErrInvalidInput
	}
	for _, code := range d.Check.ExpectedStatus {
		if code < 100 || code > 599 {
			return ErrInvalidInput
		}
	}
	return nil
}
