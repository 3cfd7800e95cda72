package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

func TestBuiltinCatalogLoads(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.List()) == 0 {
		t.Fatal("builtin catalog is empty")
	}
	d, ok := r.Get("stripe")
	if !ok {
		t.Fatal("stripe missing from builtin catalog")
	}
	if d.Check.Method != "GET" || len(d.Check.ExpectedStatus) == 0 {
		t.Fatalf("stripe not normalized: %+v", d.Check)
	}
	if d.Check.Auth.TokenField != "secret_key" {
		t.Fatalf("stripe token field = %q", d.Check.Auth.TokenField)
	}
}

func TestOverlayAddsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	overlay := `
integrations:
  - name: internal-billing
    category: payments
    enabled: true
    check:
      url: https://billing.internal/health
      expected_status: [200, 204]
      auth:
        type: api_key_header
        header_name: X-Billing-Key
  - name: stripe
    category: payments
    enabled: false
    check:
      url: https://api.stripe.com/v1/balance
      auth:
        type: bearer
`
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	added, ok := r.Get("internal-billing")
	if !ok {
		t.Fatal("overlay entry missing")
	}
	if added.Check.Auth.HeaderName != "X-Billing-Key" {
		t.Fatalf("header name = %q", added.Check.Auth.HeaderName)
	}
	overridden, _ := r.Get("stripe")
	if overridden.Enabled {
		t.Fatal("overlay should override builtin stripe")
	}
}

func TestOverlayRejectsInvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	overlay := `
integrations:
  - name: broken
    check:
      url: https://example.com
      auth:
        type: hmac_sha512
`
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Fatal("invalid auth type should fail load")
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Stripe", " stripe ", "STRIPE"} {
		if _, ok := r.Get(name); !ok {
			t.Fatalf("lookup %q failed", name)
		}
	}
	if _, ok := r.Get("ghost"); ok {
		t.Fatal("unknown name should miss")
	}
}

func TestListSortedAndNormalized(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	list := r.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Fatalf("list not sorted at %d: %s >= %s", i, list[i-1].Name, list[i].Name)
		}
	}
	for _, d := range list {
		if err := domain.ValidateDescriptor(d); err != nil {
			t.Fatalf("builtin %s invalid: %v", d.Name, err)
		}
	}
}
