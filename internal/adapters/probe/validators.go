package probe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validator inspects a 2xx-class response body for integration-specific
// signals of true health. Validators are looked up by integration name; the
// generic fallback applies to everything else.
type Validator interface {
	Validate(statusCode int, contentType string, body []byte) error
}

type ValidatorFunc func(statusCode int, contentType string, body []byte) error

func (f ValidatorFunc) Validate(statusCode int, contentType string, body []byte) error {
	return f(statusCode, contentType, body)
}

var errorKeys = []string{"error", "errors", "message", "detail"}

// genericValidate treats any 5xx as unhealthy regardless of body, and a JSON
// object carrying one of the conventional error keys as an application-level
// failure despite the 2xx status.
func genericValidate(statusCode int, contentType string, body []byte) error {
	if statusCode >= 500 {
		return fmt.Errorf("server error status %d", statusCode)
	}
	fields, ok := decodeObject(contentType, body)
	if !ok {
		return nil
	}
	for _, key := range errorKeys {
		if raw, present := fields[key]; present {
			return fmt.Errorf("response carries %q: %s", key, compact(raw))
		}
	}
	return nil
}

// paymentValidate requires the object/id envelope every payment-provider
// resource response carries.
func paymentValidate(statusCode int, contentType string, body []byte) error {
	if err := genericValidate(statusCode, contentType, body); err != nil {
		return err
	}
	fields, ok := decodeObject(contentType, body)
	if !ok {
		return fmt.Errorf("payment response is not a JSON object")
	}
	if _, hasObject := fields["object"]; hasObject {
		return nil
	}
	if _, hasID := fields["id"]; hasID {
		return nil
	}
	return fmt.Errorf("payment response missing object/id envelope")
}

// modelCatalogValidate checks LLM provider list endpoints for a populated
// catalog instead of an empty 200.
func modelCatalogValidate(statusCode int, contentType string, body []byte) error {
	if err := genericValidate(statusCode, contentType, body); err != nil {
		return err
	}
	fields, ok := decodeObject(contentType, body)
	if !ok {
		return nil
	}
	for _, key := range []string{"data", "models", "id", "object"} {
		if _, present := fields[key]; present {
			return nil
		}
	}
	return fmt.Errorf("model catalog response missing data/models")
}

// NewValidators returns the per-integration validator table. Adding an
// integration-specific rule is a map entry, not a change to the prober.
func NewValidators() map[string]Validator {
	payment := ValidatorFunc(paymentValidate)
	catalog := ValidatorFunc(modelCatalogValidate)
	return map[string]Validator{
		"stripe":       payment,
		"anthropic":    catalog,
		"azure-openai": catalog,
		"cohere":       catalog,
	}
}

func DefaultValidator() Validator { return ValidatorFunc(genericValidate) }

func decodeObject(contentType string, body []byte) (map[string]json.RawMessage, bool) {
	if len(body) == 0 {
		return nil, false
	}
	if contentType != "" && !strings.Contains(contentType, "json") {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func compact(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
