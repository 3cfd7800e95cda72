package probe

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

// Request is the concrete HTTP request built for one health-check definition.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// BuildRequest assembles the probe request from the descriptor and resolved
// credentials. Unresolved URL placeholders are left literal so the call fails
// naturally downstream; missing credentials degrade to an unauthenticated
// request for the same reason.
func BuildRequest(d domain.IntegrationDescriptor, creds map[string]string, now time.Time) Request {
	check := d.Check
	req := Request{
		Method:  check.Method,
		URL:     substitute(check.URL, check.URLDefaults),
		Headers: make(map[string]string, len(check.Headers)+2),
	}
	for name, value := range check.Headers {
		req.Headers[name] = value
	}
	injectAuth(&req, check.Auth, creds, now)
	if check.BodyTemplate != "" {
		req.Body = []byte(substitute(check.BodyTemplate, check.URLDefaults))
		if _, ok := req.Headers["Content-Type"]; !ok {
			req.Headers["Content-Type"] = "application/json"
		}
	}
	return req
}

func substitute(raw string, values map[string]string) string {
	if !strings.Contains(raw, "{") {
		return raw
	}
	return placeholderPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := values[name]; ok && value != "" {
			return value
		}
		return match
	})
}

func injectAuth(req *Request, auth domain.AuthDescriptor, creds map[string]string, now time.Time) {
	switch auth.Type {
	case domain.AuthBearer, domain.AuthOAuth2:
		if token := creds[auth.TokenField]; token != "" {
			req.Headers["Authorization"] = "Bearer " + token
		}
	case domain.AuthBasic:
		user, pass := creds[auth.UserField], creds[auth.PasswordField]
		if user != "" || pass != "" {
			encoded := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
			req.Headers["Authorization"] = "Basic " + encoded
		}
	case domain.AuthAPIKeyHeader:
		if key := creds[auth.KeyField]; key != "" {
			req.Headers[auth.HeaderName] = key
		}
	case domain.AuthAWSSigV4:
		// Header shape only; a probe against a SigV4 endpoint with bad
		// credentials fails honestly, which is the signal we want.
		accessKey := creds[auth.AccessKeyField]
		if accessKey == "" {
			return
		}
		date := now.UTC().Format("20060102T150405Z")
		scope := fmt.Sprintf("%s/%s/%s/aws4_request", date[:8], creds[auth.RegionField], creds[auth.ServiceField])
		req.Headers["X-Amz-Date"] = date
		req.Headers["Authorization"] = fmt.Sprintf("AWS4-HMAC-SHA256 Credential=%s/%s", accessKey, scope)
	}
}
