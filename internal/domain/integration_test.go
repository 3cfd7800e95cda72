package domain

import (
	"errors"
	"testing"
)

func TestNormalizeDescriptorDefaults(t *testing.T) {
	d := NormalizeDescriptor(IntegrationDescriptor{
		Name: "  Stripe ",
		Check: CheckEndpoint{
			URL:  "https://api.stripe.com/v1/balance",
			Auth: AuthDescriptor{Type: "Bearer"},
		},
	})
	if d.Name != "stripe" {
		t.Fatalf("name = %q", d.Name)
	}
	if d.Category != "general" {
		t.Fatalf("category = %q", d.Category)
	}
	if d.DisplayName != "stripe" {
		t.Fatalf("display name = %q", d.DisplayName)
	}
	if d.Check.Method != "GET" {
		t.Fatalf("method = %q", d.Check.Method)
	}
	if len(d.Check.ExpectedStatus) != 1 || d.Check.ExpectedStatus[0] != 200 {
		t.Fatalf("expected status = %v", d.Check.ExpectedStatus)
	}
	if d.Check.Auth.Type != AuthBearer || d.Check.Auth.TokenField != "token" {
		t.Fatalf("auth = %+v", d.Check.Auth)
	}
}

func TestNormalizeAuthFieldDefaults(t *testing.T) {
	basic := NormalizeAuth(AuthDescriptor{Type: AuthBasic})
	if basic.UserField != "username" || basic.PasswordField != "password" {
		t.Fatalf("basic defaults = %+v", basic)
	}
	apiKey := NormalizeAuth(AuthDescriptor{Type: AuthAPIKeyHeader})
	if apiKey.HeaderName != "X-Api-Key" || apiKey.KeyField != "api_key" {
		t.Fatalf("api key defaults = %+v", apiKey)
	}
	sigv4 := NormalizeAuth(AuthDescriptor{Type: AuthAWSSigV4})
	if sigv4.AccessKeyField != "access_key_id" || sigv4.RegionField != "region" {
		t.Fatalf("sigv4 defaults = %+v", sigv4)
	}
	empty := NormalizeAuth(AuthDescriptor{})
	if empty.Type != AuthNone {
		t.Fatalf("empty type = %q", empty.Type)
	}
}

func TestValidateDescriptor(t *testing.T) {
	valid := NormalizeDescriptor(IntegrationDescriptor{
		Name:  "sendgrid",
		Check: CheckEndpoint{URL: "https://api.sendgrid.com/v3/user/account"},
	})
	if err := ValidateDescriptor(valid); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}

	cases := []IntegrationDescriptor{
		{Name: ""},
		{Name: "x", Check: CheckEndpoint{Auth: AuthDescriptor{Type: "hmac"}}},
		{Name: "x", Check: CheckEndpoint{ExpectedStatus: []int{200, 999}, Auth: AuthDescriptor{Type: AuthNone}}},
	}
	for i, d := range cases {
		if err := ValidateDescriptor(d); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: err = %v", i, err)
		}
	}
}

func TestSuccessRateZeroChecks(t *testing.T) {
	var s IntegrationStats
	if got := s.SuccessRate(); got != 0 {
		t.Fatalf("success rate = %v", got)
	}
	s = IntegrationStats{TotalChecks: 4, SuccessfulChecks: 3}
	if got := s.SuccessRate(); got != 0.75 {
		t.Fatalf("success rate = %v", got)
	}
}

func TestProbeResultStatus(t *testing.T) {
	if (ProbeResult{Success: true}).Status() != HealthHealthy {
		t.Fatal("success should map to healthy")
	}
	if (ProbeResult{}).Status() != HealthUnhealthy {
		t.Fatal("failure should map to unhealthy")
	}
}
